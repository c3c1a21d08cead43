package score

import (
	"sort"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

type HistoryRow struct {
	DateKey         string       `json:"date"`
	Beauty          *DayStats    `json:"beauty,omitempty"`
	BeautyTotal     float64      `json:"beautyTotal"`
	UglySummary     string       `json:"uglySummary"`
	UglyTotal       float64      `json:"uglyTotal"`
	WellnessSummary string       `json:"wellnessSummary"`
	WellnessTotal   float64      `json:"wellnessTotal"`
	Health          HealthWindow `json:"health"`
}

// History builds one row per day in the period's window that has any
// beauty, ugly, or wellness event, newest day first.
func History(snap *model.Snapshot, now time.Time, period Period) ([]HistoryRow, error) {
	w := WindowFor(period, now)
	var settings model.GoalSettings
	if snap != nil {
		settings = snap.Settings
	}
	byDay := func(kind model.Kind) map[string][]model.Event {
		out := make(map[string][]model.Event)
		for _, e := range w.Select(snap.EventsOf(kind)) {
			out[e.DateKey] = append(out[e.DateKey], e)
		}
		return out
	}
	beauty := byDay(model.KindBeauty)
	ugly := byDay(model.KindUgly)
	wellness := byDay(model.KindWellness)

	days := make(map[string]struct{})
	for _, m := range []map[string][]model.Event{beauty, ugly, wellness} {
		for k := range m {
			days[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	day := WindowFor(PeriodToday, now)
	healthGoal := HealthGoal(settings, day)
	rows := make([]HistoryRow, 0, len(keys))
	for _, key := range keys {
		row := HistoryRow{
			DateKey:         key,
			BeautyTotal:     WindowTotal(beauty[key]),
			UglySummary:     Summarize(ugly[key]),
			UglyTotal:       WindowTotal(ugly[key]),
			WellnessSummary: Summarize(wellness[key]),
			WellnessTotal:   WindowTotal(wellness[key]),
		}
		if len(beauty[key]) > 0 {
			stats, err := DayStatsFor(BeautyMetric, beauty[key], settings)
			if err != nil {
				return nil, err
			}
			row.Beauty = &stats
		}
		row.Health = EvaluateHealth(HealthValue(row.BeautyTotal, row.UglyTotal, row.WellnessTotal), healthGoal)
		rows = append(rows, row)
	}
	return rows, nil
}
