package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS behaviors (
  kind TEXT NOT NULL CHECK(kind IN ('beauty', 'ugly', 'wellness')),
  id INTEGER NOT NULL CHECK(id > 0),
  category TEXT NOT NULL,
  name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  per_unit_rate REAL NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(kind, id)
);

CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL CHECK(kind IN ('beauty', 'ugly', 'wellness', 'pleasure')),
  occurred_at TEXT NOT NULL,
  date_key TEXT NOT NULL,
  category TEXT NOT NULL,
  subtype_id INTEGER NOT NULL DEFAULT 0,
  subtype_name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  amount REAL NOT NULL DEFAULT 0,
  gained_score REAL NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_kind_date_key ON events(kind, date_key);
`,
	},
	{
		version: 2,
		name:    "goal_settings",
		sql: `
CREATE TABLE IF NOT EXISTS goal_settings (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  daily_beauty_floor REAL NOT NULL DEFAULT 100 CHECK(daily_beauty_floor >= 0),
  daily_ugly_ceiling REAL NOT NULL DEFAULT 0 CHECK(daily_ugly_ceiling >= 0),
  daily_wellness_floor REAL NOT NULL DEFAULT 0 CHECK(daily_wellness_floor >= 0),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 3,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 4,
		name:    "pleasure_fields",
		sql: `
ALTER TABLE events ADD COLUMN intensity INTEGER NOT NULL DEFAULT 0;
ALTER TABLE events ADD COLUMN activity TEXT NOT NULL DEFAULT '';
ALTER TABLE events ADD COLUMN note TEXT NOT NULL DEFAULT '';
`,
	},
}

type seedBehavior struct {
	kind     string
	id       int64
	category string
	name     string
	unit     string
	rate     float64
}

var defaultBehaviors = []seedBehavior{
	{"beauty", 1, "strength", "Dumbbell", "reps", 0.25},
	{"beauty", 2, "strength", "Knee push-ups", "reps", 0.25},
	{"beauty", 3, "cardio", "Jump rope", "reps", 0.25},
	{"beauty", 4, "strength", "Push-ups", "reps", 1},
	{"beauty", 5, "strength", "Squats", "reps", 0.5},
	{"beauty", 6, "cardio", "Brisk walk", "min", 2.5},
	{"beauty", 7, "cardio", "Dance", "min", 2.5},
	{"beauty", 8, "cardio", "Hiking", "min", 2.5},
	{"beauty", 9, "cardio", "Yoga", "min", 5},
	{"beauty", 10, "cardio", "Running", "min", 5},
	{"beauty", 11, "strength", "Other bodyweight", "min", 5},
	{"ugly", 1, "body", "Late night", "times", 0},
	{"ugly", 2, "body", "Sitting too long", "hours", 0},
	{"ugly", 3, "body", "Takeout", "meals", 0},
	{"ugly", 4, "body", "Drinking", "drinks", 0},
	{"ugly", 5, "mind", "Doomscrolling", "min", 0},
	{"wellness", 1, "supplement", "Vitamins", "dose", 1},
	{"wellness", 2, "body-relax", "Massage", "min", 0.5},
	{"wellness", 3, "mind-relax", "Meditation", "min", 1},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	return seedDefaults(db)
}

// seedDefaults fills an empty catalog with the built-in behaviors. A catalog
// the user has already edited, including one emptied on purpose after the
// first run, is left alone.
func seedDefaults(db *sql.DB) error {
	if _, err := db.Exec(`INSERT OR IGNORE INTO goal_settings(id) VALUES(1)`); err != nil {
		return fmt.Errorf("seed goal settings: %w", err)
	}

	var seeded int
	err := db.QueryRow(`SELECT 1 FROM app_config WHERE key = 'catalog_seeded'`).Scan(&seeded)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check catalog seed marker: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	for _, b := range defaultBehaviors {
		if _, err := tx.Exec(`
INSERT OR IGNORE INTO behaviors(kind, id, category, name, unit, per_unit_rate)
VALUES(?, ?, ?, ?, ?, ?)
`, b.kind, b.id, b.category, b.name, b.unit, b.rate); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed default behavior %s/%s: %w", b.kind, b.name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO app_config(key, value) VALUES('catalog_seeded', '1')`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record catalog seed marker: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog seed: %w", err)
	}
	return nil
}
