package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/checkin-cli/internal/db"
)

var shanghai = time.FixedZone("UTC+8", 8*60*60)

// fixedNow is a Friday evening.
var fixedNow = time.Date(2026, 2, 13, 19, 30, 0, 0, shanghai)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkin.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
