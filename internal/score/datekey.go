// Package score turns raw event logs into time-windowed totals, goal status,
// and composite health values. Every function is pure: callers pass the
// event snapshot, the goal settings, and the evaluation instant explicitly.
package score

import (
	"fmt"
	"time"
)

// DateKeyLayout is fixed width and zero padded, so lexicographic order of
// keys matches chronological order.
const DateKeyLayout = "2006-01-02"

// ToDateKey formats the calendar day of t in t's own location.
func ToDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// LocalDateKey formats the calendar day of t in loc, or in time.Local when
// loc is nil. Stored instants may carry any offset, including Z.
func LocalDateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ToDateKey(t.In(loc))
}

// FromDateKey returns midnight of the keyed day in loc.
func FromDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q (expected YYYY-MM-DD)", key)
	}
	return t, nil
}

// ValidDateKey reports whether key is a canonical date key.
func ValidDateKey(key string) bool {
	t, err := time.Parse(DateKeyLayout, key)
	return err == nil && t.Format(DateKeyLayout) == key
}

// AddDays shifts a date key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q (expected YYYY-MM-DD)", key)
	}
	return t.AddDate(0, 0, n).Format(DateKeyLayout), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns Monday 00:00 of the week containing now. Sunday is the
// seventh day of the week that began six days earlier.
func WeekStart(now time.Time) time.Time {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := now.Date()
	return time.Date(y, m, d-(weekday-1), 0, 0, 0, 0, now.Location())
}

func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func DaysInMonth(now time.Time) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// DaysElapsedInWeek counts calendar days from Monday through now inclusive.
func DaysElapsedInWeek(now time.Time) int {
	weekday := int(now.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

// DaysElapsedInMonth counts calendar days from the 1st through now inclusive.
func DaysElapsedInMonth(now time.Time) int {
	return now.Day()
}
