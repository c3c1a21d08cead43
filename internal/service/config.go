package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ConfigSyncUserID      = "sync_user_id"
	ConfigSyncAccessToken = "sync_access_token"
	ConfigLastPullAt      = "last_pull_at"
	ConfigLastPushAt      = "last_push_at"
	ConfigDataUpdatedAt   = "data_updated_at"
)

// Keys in app_config are case-insensitive.
func configKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", fmt.Errorf("config key is required")
	}
	return key, nil
}

func SetConfig(db *sql.DB, key, value string) error {
	return putConfig(db, key, value)
}

func putConfig(ex execer, key, value string) error {
	key, err := configKey(key)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key, err := configKey(key)
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func DeleteConfig(db *sql.DB, key string) error {
	key, err := configKey(key)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete config %q: %w", key, err)
	}
	return nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// ConfigTime reads a timestamp stored by SetConfigTime. Missing keys return
// the zero time.
func ConfigTime(db *sql.DB, key string) (time.Time, error) {
	raw, ok, err := GetConfig(db, key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse config %q as time: %w", key, err)
	}
	return t, nil
}

func SetConfigTime(db *sql.DB, key string, t time.Time) error {
	return putConfig(db, key, formatConfigTime(t))
}

func formatConfigTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
