package checkin

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliEnv points every command at a scratch database and config file.
type cliEnv struct {
	db     string
	config string
	now    string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"CHECKIN_SUPABASE_URL", "CHECKIN_SUPABASE_ANON_KEY", "CHECKIN_REDIS_ADDR", "CHECKIN_LOG_MODE", "CHECKIN_SYNC_DEBOUNCE_MS"} {
		t.Setenv(name, "")
	}
	return cliEnv{
		db:     filepath.Join(dir, "checkin.db"),
		config: filepath.Join(dir, "config.yaml"),
		now:    "2026-03-10",
	}
}

// run executes one command line in-process and returns stdout and stderr.
func (e cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	full := append([]string{"--db", e.db, "--config", e.config, "--now", e.now}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%s failed: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

// resetFlags restores flag defaults between in-process runs; cobra keeps
// flag state on the package-level commands.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	resetFlags(rootCmd)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 2; i++ {
		out := env.mustRun(t, "init")
		for _, want := range []string{"beauty catalog: 11 behaviors", "ugly catalog: 5 behaviors", "wellness catalog: 3 behaviors"} {
			if !strings.Contains(out, want) {
				t.Fatalf("init run %d missing %q:\n%s", i+1, want, out)
			}
		}
	}
}

func TestInitWriteConfig(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "init", "--write-config")
	if !strings.Contains(out, "Wrote default config to "+env.config) {
		t.Fatalf("expected config write, got:\n%s", out)
	}
	out = env.mustRun(t, "init", "--write-config")
	if !strings.Contains(out, "Config already exists") {
		t.Fatalf("expected existing config notice, got:\n%s", out)
	}
}

func TestInvalidNowFlag(t *testing.T) {
	env := newCLIEnv(t)
	env.now = "yesterday"
	_, _, err := env.run(t, "overview")
	if err == nil || !strings.Contains(err.Error(), "invalid --now") {
		t.Fatalf("expected invalid --now error, got %v", err)
	}
}
