package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// occurredAtLayout keeps the UTC offset so the stored instant still carries
// the calendar day it was logged on.
const occurredAtLayout = time.RFC3339Nano

// ErrNotFound is wrapped by lookups and mutations that match no row.
var ErrNotFound = errors.New("not found")

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateFinite(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	return nil
}

// finiteOrZero coerces NaN and infinities to 0.
func finiteOrZero(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func nowOr(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now()
	}
	return now
}

func expectOneRow(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for %s: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return nil
}

// markChanged stamps the local data as modified, which sync status compares
// against the last push.
func markChanged(ex execer, now time.Time) error {
	if err := putConfig(ex, ConfigDataUpdatedAt, formatConfigTime(nowOr(now))); err != nil {
		return fmt.Errorf("mark data changed: %w", err)
	}
	return nil
}
