package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas run on every connection open. busy_timeout lets the CLI and a
// running `checkin serve` share one database file.
var pragmas = []struct {
	stmt string
	what string
}{
	{`PRAGMA foreign_keys = ON;`, "enable foreign keys"},
	{`PRAGMA busy_timeout = 5000;`, "set busy timeout"},
}

// Open opens the SQLite database at path with a single connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}
	return db, nil
}
