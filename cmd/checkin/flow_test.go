package checkin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
)

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func useNotifier(t *testing.T) *recordingNotifier {
	t.Helper()
	rec := &recordingNotifier{}
	prev := desktopNotifier
	desktopNotifier = rec
	t.Cleanup(func() { desktopNotifier = prev })
	return rec
}

func TestDayInTheLifeFlow(t *testing.T) {
	env := newCLIEnv(t)
	rec := useNotifier(t)

	env.mustRun(t, "init")
	env.mustRun(t, "config", "set", "--notify")
	out := env.mustRun(t, "goal", "set", "--beauty", "50", "--wellness", "10")
	if !strings.Contains(out, "Goals: beauty 50 | ugly limit 0 | wellness 10") {
		t.Fatalf("unexpected goal output:\n%s", out)
	}

	out = env.mustRun(t, "log", "beauty", "--id", "4", "--amount", "30")
	if !strings.Contains(out, "Logged beauty: Push-ups 30reps (+30) on 2026-03-10") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
	if !strings.Contains(out, "Today beauty: 30 / 50 (low)") {
		t.Fatalf("expected low progress:\n%s", out)
	}
	if len(rec.titles) != 0 {
		t.Fatalf("expected no notification below goal, got %v", rec.titles)
	}

	out = env.mustRun(t, "log", "beauty", "--id", "5", "--amount", "50")
	if !strings.Contains(out, "Today beauty: 55 / 50 (ok)") {
		t.Fatalf("expected ok progress:\n%s", out)
	}
	if len(rec.titles) != 1 || rec.titles[0] != "Daily beauty goal reached" {
		t.Fatalf("expected one goal notification, got %v", rec.titles)
	}

	env.mustRun(t, "log", "ugly", "--id", "1", "--amount", "1")
	env.mustRun(t, "log", "wellness", "--id", "3", "--amount", "15")
	out = env.mustRun(t, "log", "pleasure", "--category", "sensory", "--activity", "Hot shower", "--intensity", "6")
	if !strings.Contains(out, "Logged pleasure: Hot shower (sensory, intensity 6) on 2026-03-10") {
		t.Fatalf("unexpected pleasure output:\n%s", out)
	}
	out = env.mustRun(t, "log", "beauty", "--id", "4", "--amount", "10", "--date", "2026-03-09")
	if !strings.Contains(out, "on 2026-03-09") || strings.Contains(out, "Today beauty") {
		t.Fatalf("backdated log should not report today's progress:\n%s", out)
	}

	out = env.mustRun(t, "overview", "--period", "today", "--json")
	var today score.PeriodView
	if err := json.Unmarshal([]byte(out), &today); err != nil {
		t.Fatalf("decode overview json: %v\n%s", err, out)
	}
	if today.Beauty.Total != 55 {
		t.Fatalf("expected beauty total 55, got %v", today.Beauty.Total)
	}
	if today.Wellness.Total != 15 {
		t.Fatalf("expected wellness total 15, got %v", today.Wellness.Total)
	}
	if today.Pleasure.Total != 6 {
		t.Fatalf("expected pleasure total 6, got %v", today.Pleasure.Total)
	}
	if today.Beauty.Floor == nil || !today.Beauty.Floor.Achieved {
		t.Fatalf("expected beauty floor achieved: %+v", today.Beauty.Floor)
	}

	out = env.mustRun(t, "overview")
	for _, want := range []string{"Today (2026-03-10)", "This week", "This month", "Health"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}

	out = env.mustRun(t, "history", "--period", "week")
	if !strings.Contains(out, "2026-03-10") || !strings.Contains(out, "2026-03-09") {
		t.Fatalf("history missing days:\n%s", out)
	}

	out = env.mustRun(t, "trend", "--days", "7")
	if !strings.Contains(out, "max beauty 55 | max pleasure 6") {
		t.Fatalf("unexpected trend output:\n%s", out)
	}

	out = env.mustRun(t, "events", "list", "--kind", "beauty", "--json")
	var beauty []model.Event
	if err := json.Unmarshal([]byte(out), &beauty); err != nil {
		t.Fatalf("decode events json: %v", err)
	}
	if len(beauty) != 3 {
		t.Fatalf("expected 3 beauty events, got %d", len(beauty))
	}

	var target string
	for _, e := range beauty {
		if e.SubtypeName == "Squats" {
			target = e.ID
		}
	}
	if target == "" {
		t.Fatalf("squats event not found in %+v", beauty)
	}
	env.mustRun(t, "events", "delete", target)
	out = env.mustRun(t, "overview", "--period", "today", "--json")
	if err := json.Unmarshal([]byte(out), &today); err != nil {
		t.Fatalf("decode overview json: %v", err)
	}
	if today.Beauty.Total != 30 {
		t.Fatalf("expected beauty total 30 after delete, got %v", today.Beauty.Total)
	}
}

func TestLogValidationErrors(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "init")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing id", []string{"log", "beauty", "--amount", "5"}, "--id is required"},
		{"missing amount", []string{"log", "beauty", "--id", "4"}, "amount"},
		{"outside backdate window", []string{"log", "beauty", "--id", "4", "--amount", "5", "--date", "2026-03-01"}, ""},
		{"future date", []string{"log", "wellness", "--id", "3", "--amount", "5", "--date", "2026-03-11"}, ""},
		{"bad intensity", []string{"log", "pleasure", "--category", "mind", "--activity", "Read", "--intensity", "5"}, ""},
		{"unknown catalog id", []string{"log", "ugly", "--id", "99", "--amount", "1"}, ""},
	}
	for _, tc := range cases {
		_, _, err := env.run(t, tc.args...)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in error, got %v", tc.name, tc.want, err)
		}
	}

	out := env.mustRun(t, "events", "list")
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected only the header after rejected logs:\n%s", out)
	}
}

func TestCatalogCommands(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "catalog", "add", "--kind", "wellness", "--category", "supplement", "--name", "Vitamin D", "--unit", "pill", "--rate", "2")
	if !strings.Contains(out, "Added wellness behavior 4: Vitamin D (supplement, 2 per pill)") {
		t.Fatalf("unexpected add output:\n%s", out)
	}
	out = env.mustRun(t, "log", "wellness", "--id", "4", "--amount", "1")
	if !strings.Contains(out, "(+2)") {
		t.Fatalf("expected rate 2 applied:\n%s", out)
	}

	env.mustRun(t, "catalog", "edit", "--kind", "wellness", "--id", "4", "--rate", "3")
	env.mustRun(t, "log", "wellness", "--id", "4", "--amount", "1")
	out = env.mustRun(t, "events", "list", "--kind", "wellness", "--json")
	var events []model.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	var gains []float64
	for _, e := range events {
		gains = append(gains, e.GainedScore)
	}
	if len(gains) != 2 || gains[0]+gains[1] != 5 {
		t.Fatalf("edit should only affect new events, got %v", gains)
	}

	env.mustRun(t, "catalog", "remove", "--kind", "wellness", "--id", "4")
	out = env.mustRun(t, "catalog", "list", "--kind", "wellness")
	if strings.Contains(out, "Vitamin D") {
		t.Fatalf("removed behavior still listed:\n%s", out)
	}

	if _, _, err := env.run(t, "catalog", "list", "--kind", "pleasure"); err == nil {
		t.Fatalf("expected pleasure catalog to be rejected")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newCLIEnv(t)
	src.mustRun(t, "log", "beauty", "--id", "4", "--amount", "20")
	src.mustRun(t, "log", "pleasure", "--category", "creative", "--activity", "Sketch", "--intensity", "10")
	src.mustRun(t, "goal", "set", "--beauty", "80")

	file := filepath.Join(t.TempDir(), "export.json")
	out := src.mustRun(t, "export", "--out", file)
	if !strings.Contains(out, "Exported 2 events") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), "pleasure_entries") {
		t.Fatalf("export should use the sync payload shape:\n%s", raw)
	}

	dst := newCLIEnv(t)
	out = dst.mustRun(t, "import", "--file", file, "--dry-run")
	if !strings.Contains(out, "Dry-run import validated") {
		t.Fatalf("unexpected dry-run output:\n%s", out)
	}
	out = dst.mustRun(t, "events", "list")
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("dry-run should not write events:\n%s", out)
	}

	dst.mustRun(t, "import", "--file", file, "--mode", "replace")
	out = dst.mustRun(t, "events", "list", "--json")
	var events []model.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 imported events, got %d", len(events))
	}
	out = dst.mustRun(t, "goal", "show")
	if !strings.Contains(out, "Daily beauty goal: 80") {
		t.Fatalf("goals not imported:\n%s", out)
	}
}

func TestDoctorBackupAndSyncStatus(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "log", "beauty", "--id", "4", "--amount", "5")

	out := env.mustRun(t, "doctor")
	if !strings.Contains(out, "Unreadable rows: 0") {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}

	backup := filepath.Join(t.TempDir(), "snap.db")
	out = env.mustRun(t, "backup", "create", "--out", backup)
	if !strings.Contains(out, "Created backup: "+backup) {
		t.Fatalf("unexpected backup output:\n%s", out)
	}
	out = env.mustRun(t, "backup", "list", "--dir", filepath.Dir(backup))
	if !strings.Contains(out, backup) {
		t.Fatalf("backup not listed:\n%s", out)
	}
	if _, _, err := env.run(t, "backup", "restore", "--file", backup); err == nil {
		t.Fatalf("expected restore without --force to refuse an existing db")
	}
	env.mustRun(t, "backup", "restore", "--file", backup, "--force")

	out = env.mustRun(t, "sync", "status")
	for _, want := range []string{"Mode: local", "Last pull: never", "Pending: yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("sync status missing %q:\n%s", want, out)
		}
	}
	if _, _, err := env.run(t, "sync", "login", "--email", "a@example.com", "--password", "x"); err == nil {
		t.Fatalf("expected login to fail without a configured backend")
	}
}

func TestConfigSetAndGet(t *testing.T) {
	env := newCLIEnv(t)
	if _, _, err := env.run(t, "config", "set"); err == nil {
		t.Fatalf("expected error with no flags")
	}
	if _, _, err := env.run(t, "config", "set", "--backend", "ftp"); err == nil {
		t.Fatalf("expected invalid backend error")
	}
	env.mustRun(t, "config", "set", "--backend", "redis", "--redis-addr", "127.0.0.1:6379", "--debounce-ms", "250")
	out := env.mustRun(t, "config", "get")
	for _, want := range []string{"backend: redis", "redis_addr: 127.0.0.1:6379", "debounce_ms: 250"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config get missing %q:\n%s", want, out)
		}
	}
}
