package app

import (
	"fmt"
	"strings"
	"time"
)

// ParseInstant reads an evaluation instant from a flag or query value. RFC3339
// values are used as given in the local zone; a bare YYYY-MM-DD date keeps
// fallback's clock time. An empty value returns fallback.
func ParseInstant(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(fallback.Location()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, fallback.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DD)", raw)
	}
	h, m, s := fallback.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, fallback.Nanosecond(), fallback.Location()), nil
}
