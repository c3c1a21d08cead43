package checkin

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	cfgNotify          bool
	cfgLogMode         string
	cfgLogLevel        string
	cfgDBPath          string
	cfgBackend         string
	cfgSupabaseURL     string
	cfgSupabaseAnonKey string
	cfgRedisAddr       string
	cfgRedisPassword   string
	cfgRedisDB         int
	cfgDebounceMS      int
	cfgServeAddr       string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage checkin configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set values in the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := app.LoadConfigFile(path)
		if err != nil {
			return err
		}
		updates := 0
		set := func(flag string, apply func()) {
			if cmd.Flags().Changed(flag) {
				apply()
				updates++
			}
		}
		set("notify", func() { cfg.Notify = cfgNotify })
		set("log-mode", func() { cfg.LogMode = cfgLogMode })
		set("log-level", func() { cfg.LogLevel = cfgLogLevel })
		set("db-path", func() { cfg.DBPath = cfgDBPath })
		set("backend", func() { cfg.Sync.Backend = cfgBackend })
		set("supabase-url", func() { cfg.Sync.SupabaseURL = cfgSupabaseURL })
		set("supabase-anon-key", func() { cfg.Sync.SupabaseAnonKey = cfgSupabaseAnonKey })
		set("redis-addr", func() { cfg.Sync.RedisAddr = cfgRedisAddr })
		set("redis-password", func() { cfg.Sync.RedisPassword = cfgRedisPassword })
		set("redis-db", func() { cfg.Sync.RedisDB = cfgRedisDB })
		set("debounce-ms", func() { cfg.Sync.DebounceMS = cfgDebounceMS })
		set("serve-addr", func() { cfg.Serve.Addr = cfgServeAddr })
		if updates == 0 {
			return fmt.Errorf("set at least one flag")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := app.WriteConfig(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s) in %s\n", updates, path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show effective configuration and stored state",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Sync.SupabaseAnonKey != "" {
			cfg.Sync.SupabaseAnonKey = "[redacted]"
		}
		if cfg.Sync.RedisPassword != "" {
			cfg.Sync.RedisPassword = "[redacted]"
		}
		raw, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", path, raw)

		return withDB(func(sqldb *sql.DB) error {
			state, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(state))
			for k := range state {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				v := state[k]
				if k == service.ConfigSyncAccessToken && v != "" {
					v = "[redacted]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, v)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	f := configSetCmd.Flags()
	f.BoolVar(&cfgNotify, "notify", false, "Desktop notification when a daily goal is reached")
	f.StringVar(&cfgLogMode, "log-mode", "", "Log format: dev or prod")
	f.StringVar(&cfgLogLevel, "log-level", "", "Default log level")
	f.StringVar(&cfgDBPath, "db-path", "", "Database path")
	f.StringVar(&cfgBackend, "backend", "", "Sync backend: supabase or redis")
	f.StringVar(&cfgSupabaseURL, "supabase-url", "", "Supabase project URL")
	f.StringVar(&cfgSupabaseAnonKey, "supabase-anon-key", "", "Supabase anon key")
	f.StringVar(&cfgRedisAddr, "redis-addr", "", "Redis address host:port")
	f.StringVar(&cfgRedisPassword, "redis-password", "", "Redis password")
	f.IntVar(&cfgRedisDB, "redis-db", 0, "Redis database number")
	f.IntVar(&cfgDebounceMS, "debounce-ms", 0, "Quiet period before a background push, in milliseconds")
	f.StringVar(&cfgServeAddr, "serve-addr", "", "Default listen address for serve")
}
