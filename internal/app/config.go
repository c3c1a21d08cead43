package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvSupabaseURL     = "CHECKIN_SUPABASE_URL"
	EnvSupabaseAnonKey = "CHECKIN_SUPABASE_ANON_KEY"
	EnvRedisAddr       = "CHECKIN_REDIS_ADDR"
	EnvLogMode         = "CHECKIN_LOG_MODE"
	EnvDebounceMS      = "CHECKIN_SYNC_DEBOUNCE_MS"
)

const (
	SyncBackendSupabase = "supabase"
	SyncBackendRedis    = "redis"
)

type Config struct {
	DBPath   string      `yaml:"db_path,omitempty"`
	LogMode  string      `yaml:"log_mode"`
	LogLevel string      `yaml:"log_level"`
	Notify   bool        `yaml:"notify"`
	Sync     SyncConfig  `yaml:"sync"`
	Serve    ServeConfig `yaml:"serve"`
}

type SyncConfig struct {
	Backend         string `yaml:"backend"`
	SupabaseURL     string `yaml:"supabase_url,omitempty"`
	SupabaseAnonKey string `yaml:"supabase_anon_key,omitempty"`
	RedisAddr       string `yaml:"redis_addr,omitempty"`
	RedisPassword   string `yaml:"redis_password,omitempty"`
	RedisDB         int    `yaml:"redis_db,omitempty"`
	DebounceMS      int    `yaml:"debounce_ms"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:  "dev",
		LogLevel: "warn",
		Sync: SyncConfig{
			Backend:        SyncBackendSupabase,
			DebounceMS:     600,
			TimeoutSeconds: 15,
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8787"},
	}
}

func (s SyncConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s SyncConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Configured reports whether the selected backend has enough settings to
// connect.
func (s SyncConfig) Configured() bool {
	switch s.Backend {
	case SyncBackendRedis:
		return s.RedisAddr != ""
	default:
		return s.SupabaseURL != "" && s.SupabaseAnonKey != ""
	}
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads path over the defaults without environment
// overrides, so the result can be edited and written back.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := envString(EnvSupabaseURL); v != "" {
		cfg.Sync.SupabaseURL = v
	}
	if v := envString(EnvSupabaseAnonKey); v != "" {
		cfg.Sync.SupabaseAnonKey = v
	}
	if v := envString(EnvRedisAddr); v != "" {
		cfg.Sync.RedisAddr = v
	}
	if v := envString(EnvLogMode); v != "" {
		cfg.LogMode = v
	}
	cfg.Sync.DebounceMS = envInt(EnvDebounceMS, cfg.Sync.DebounceMS)
}

func (c *Config) Validate() error {
	c.LogMode = strings.ToLower(strings.TrimSpace(c.LogMode))
	switch c.LogMode {
	case "", "dev", "prod":
	default:
		return fmt.Errorf("invalid log_mode %q (use dev or prod)", c.LogMode)
	}
	c.Sync.Backend = strings.ToLower(strings.TrimSpace(c.Sync.Backend))
	switch c.Sync.Backend {
	case "":
		c.Sync.Backend = SyncBackendSupabase
	case SyncBackendSupabase, SyncBackendRedis:
	default:
		return fmt.Errorf("invalid sync.backend %q (use supabase or redis)", c.Sync.Backend)
	}
	if c.Sync.DebounceMS < 0 {
		return fmt.Errorf("sync.debounce_ms must be >= 0")
	}
	if c.Sync.TimeoutSeconds <= 0 {
		c.Sync.TimeoutSeconds = DefaultConfig().Sync.TimeoutSeconds
	}
	c.Sync.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.Sync.SupabaseURL), "/")
	return nil
}

// WriteConfig saves cfg as YAML, creating parent directories.
func WriteConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func envString(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func envInt(name string, def int) int {
	v := envString(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
