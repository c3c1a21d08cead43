package score_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
)

func TestWindowEventsInclusiveBounds(t *testing.T) {
	t.Parallel()
	events := []model.Event{
		beauty("2026-02-08", "Squats", 1, 1),
		beauty("2026-02-09", "Squats", 2, 2),
		beauty("2026-02-15", "Squats", 3, 3),
		beauty("2026-02-12", "Squats", 4, 4),
		beauty("2026-02-16", "Squats", 5, 5),
	}
	got := score.WindowEvents(events, "2026-02-09", "2026-02-15")
	if len(got) != 3 {
		t.Fatalf("expected 3 events in window, got %d", len(got))
	}
	if got[0].Amount != 2 || got[1].Amount != 3 || got[2].Amount != 4 {
		t.Fatalf("expected input order preserved, got %+v", got)
	}
	if out := score.WindowEvents(nil, "2026-02-09", "2026-02-15"); len(out) != 0 {
		t.Fatalf("expected empty window for empty input")
	}
}

func TestWindowTotalEmptyIsZero(t *testing.T) {
	t.Parallel()
	if got := score.WindowTotal(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestWindowTotalIsStableUnderManyTermsAndReordering(t *testing.T) {
	t.Parallel()
	events := make([]model.Event, 0, 1000)
	for i := 0; i < 1000; i++ {
		events = append(events, beauty("2026-02-13", "Jump rope", 1, 0.1))
	}
	if got := score.WindowTotal(events); got != 100 {
		t.Fatalf("expected exactly 100, got %v", got)
	}

	rng := rand.New(rand.NewSource(3))
	mixed := make([]model.Event, 0, 500)
	for i := 0; i < 500; i++ {
		mixed = append(mixed, beauty("2026-02-13", "x", 1, float64(rng.Intn(100000)-20000)/100))
	}
	want := score.WindowTotal(mixed)
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Event(nil), mixed...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := score.WindowTotal(shuffled); got != want {
			t.Fatalf("total changed after reordering: %v vs %v", got, want)
		}
	}
}

func TestWindowsForSunday(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 15, 20, 0, 0, 0, shanghai)
	ws := score.Windows(now)
	if len(ws) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(ws))
	}
	today, week, month := ws[0], ws[1], ws[2]
	if today.StartKey != "2026-02-15" || today.EndKey != "2026-02-15" || today.Days != 1 {
		t.Fatalf("unexpected today window %+v", today)
	}
	if week.StartKey != "2026-02-09" || week.Days != 7 || week.Elapsed != 7 {
		t.Fatalf("unexpected week window %+v", week)
	}
	if month.StartKey != "2026-02-01" || month.Days != 28 || month.Elapsed != 15 {
		t.Fatalf("unexpected month window %+v", month)
	}
}

func TestWindowTotalsAreMonotonic(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 50; round++ {
		now := time.Date(2026, time.Month(rng.Intn(12)+1), rng.Intn(28)+1, 12, 0, 0, 0, shanghai)
		events := make([]model.Event, 0)
		for i := 0; i < 60; i++ {
			day := now.AddDate(0, 0, -rng.Intn(45)+5)
			events = append(events, beauty(score.ToDateKey(day), "Squats", 1, float64(rng.Intn(5000))/100))
		}
		ws := score.Windows(now)
		today := score.WindowTotal(ws[0].Select(events))
		week := score.WindowTotal(ws[1].Select(events))
		month := score.WindowTotal(ws[2].Select(events))
		if !(month >= week || ws[1].StartKey < ws[2].StartKey) {
			t.Fatalf("month total %v below week total %v for %s", month, week, now)
		}
		if week < today || month < today {
			t.Fatalf("window totals not monotonic: today=%v week=%v month=%v", today, week, month)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()
	if p, err := score.ParsePeriod(" Week "); err != nil || p != score.PeriodWeek {
		t.Fatalf("expected week, got %v %v", p, err)
	}
	if p, err := score.ParsePeriod(""); err != nil || p != score.PeriodToday {
		t.Fatalf("expected default today, got %v %v", p, err)
	}
	if _, err := score.ParsePeriod("year"); err == nil {
		t.Fatalf("expected unsupported period error")
	}
}
