package checkin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/db"
	"github.com/saadjs/checkin-cli/internal/logger"
)

// runtimeEnv is the per-invocation state shared by commands that need more
// than the database.
type runtimeEnv struct {
	cfg app.Config
	log *logger.Logger
	now time.Time
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

func loadConfig() (app.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(path)
}

func loadEnv() (runtimeEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return runtimeEnv{}, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(cfg.LogMode, level)
	if err != nil {
		return runtimeEnv{}, err
	}
	now, err := evaluationNow()
	if err != nil {
		return runtimeEnv{}, err
	}
	return runtimeEnv{cfg: cfg, log: log, now: now}, nil
}

func evaluationNow() (time.Time, error) {
	t, err := app.ParseInstant(nowFlag, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t, nil
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withEnvDB opens the database and loads config, logger, and clock.
func withEnvDB(run func(*sql.DB, runtimeEnv) error) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.log.Sync()
	return withDB(func(sqldb *sql.DB) error {
		return run(sqldb, env)
	})
}

func printJSON(cmd *cobra.Command, v any, what string) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s json: %w", what, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// num prints a score without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64) + "%"
}

func writeRows(w io.Writer, header string, rows [][]string) {
	fmt.Fprintln(w, header)
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
}
