package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/checkin-cli/internal/app"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := app.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Sync.Debounce() != 600*time.Millisecond || cfg.Sync.Backend != app.SyncBackendSupabase {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Serve.Addr != "127.0.0.1:8787" || cfg.Notify {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
log_mode: prod
notify: true
sync:
  backend: Redis
  redis_addr: 10.0.0.2:6379
  supabase_url: https://example.supabase.co/
  debounce_ms: 250
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(app.EnvRedisAddr, "127.0.0.1:6380")
	t.Setenv(app.EnvDebounceMS, "not-a-number")

	cfg, err := app.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogMode != "prod" || !cfg.Notify || cfg.Sync.Backend != app.SyncBackendRedis {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Sync.RedisAddr != "127.0.0.1:6380" {
		t.Fatalf("expected env override, got %q", cfg.Sync.RedisAddr)
	}
	if cfg.Sync.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Sync.SupabaseURL)
	}
	if cfg.Sync.DebounceMS != 250 {
		t.Fatalf("expected invalid env int ignored, got %d", cfg.Sync.DebounceMS)
	}
	if !cfg.Sync.Configured() {
		t.Fatalf("expected redis backend to be configured")
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sync:\n  backend: dynamo\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := app.LoadConfig(path); err == nil {
		t.Fatalf("expected backend validation error")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := app.DefaultConfig()
	cfg.Notify = true
	cfg.Sync.SupabaseURL = "https://x.supabase.co"
	if err := app.WriteConfig(path, cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := app.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !got.Notify || got.Sync.SupabaseURL != "https://x.supabase.co" {
		t.Fatalf("unexpected round trip %+v", got)
	}
}

func TestLoadConfigFileIgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notify: true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(app.EnvSupabaseAnonKey, "from-env")
	cfg, err := app.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load config file: %v", err)
	}
	if !cfg.Notify || cfg.Sync.SupabaseAnonKey != "" {
		t.Fatalf("expected file values only, got %+v", cfg)
	}
}
