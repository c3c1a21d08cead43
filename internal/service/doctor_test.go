package service_test

import (
	"testing"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

func TestRunDoctorFindsAndFixesDateKeys(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	e, err := service.LogEvent(sqldb, service.LogEventInput{Kind: model.KindBeauty, BehaviorID: 4, Amount: 10, Now: fixedNow})
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
	// A key derived through UTC lands on the wrong day for early-morning events.
	if _, err := sqldb.Exec(`UPDATE events SET date_key = '2026-02-12' WHERE id = ?`, e.ID); err != nil {
		t.Fatalf("corrupt date key: %v", err)
	}
	if _, err := sqldb.Exec(`
INSERT INTO events(id, kind, occurred_at, date_key, category, subtype_name, amount, gained_score, intensity)
VALUES('bad-1', 'pleasure', '2026-02-13T10:00:00+08:00', '2026-02-13', 'nap', 'Nap', 1, 4, 4)
`); err != nil {
		t.Fatalf("insert bad row: %v", err)
	}

	report, err := service.RunDoctor(sqldb, service.DoctorOptions{Location: shanghai})
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.DateKeyMismatches != 1 || report.UnknownCategories != 1 || report.InvalidIntensities != 1 || report.Healthy() {
		t.Fatalf("unexpected doctor report %+v", report)
	}

	fixed, err := service.RunDoctor(sqldb, service.DoctorOptions{Fix: true, Location: shanghai})
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if fixed.FixedDateKeys != 1 {
		t.Fatalf("expected one fixed row, got %+v", fixed)
	}
	after, err := service.RunDoctor(sqldb, service.DoctorOptions{Location: shanghai})
	if err != nil {
		t.Fatalf("doctor after fix: %v", err)
	}
	if after.DateKeyMismatches != 0 {
		t.Fatalf("expected date keys fixed, got %+v", after)
	}
}

func TestRunDoctorKeepsLocalDayOfUTCInstant(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	// 07:00 on the 13th in UTC+8 is stored as 23:00Z on the 12th.
	if _, err := sqldb.Exec(`
INSERT INTO events(id, kind, occurred_at, date_key, category, subtype_name, amount, gained_score, intensity)
VALUES('early-1', 'beauty', '2026-02-12T23:00:00Z', '2026-02-13', 'strength', 'Push-ups', 10, 10, 0)
`); err != nil {
		t.Fatalf("insert event: %v", err)
	}

	report, err := service.RunDoctor(sqldb, service.DoctorOptions{Fix: true, Location: shanghai})
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.DateKeyMismatches != 0 || report.FixedDateKeys != 0 || !report.Healthy() {
		t.Fatalf("local date key flagged as mismatch: %+v", report)
	}
	var key string
	if err := sqldb.QueryRow(`SELECT date_key FROM events WHERE id = 'early-1'`).Scan(&key); err != nil {
		t.Fatalf("read date key: %v", err)
	}
	if key != "2026-02-13" {
		t.Fatalf("expected date key 2026-02-13 kept, got %s", key)
	}

	utc, err := service.RunDoctor(sqldb, service.DoctorOptions{Location: time.UTC})
	if err != nil {
		t.Fatalf("doctor in utc: %v", err)
	}
	if utc.DateKeyMismatches != 1 {
		t.Fatalf("expected mismatch against the UTC day, got %+v", utc)
	}
}
