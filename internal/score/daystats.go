package score

import (
	"fmt"

	"github.com/saadjs/checkin-cli/internal/model"
)

type CategoryLine struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// DayStats is one day's row for a single metric.
type DayStats struct {
	DateKey        string         `json:"date"`
	Total          float64        `json:"total"`
	Categories     []CategoryLine `json:"categories"`
	Status         DayStatus      `json:"status"`
	CompletionRate float64        `json:"completionRate"`
	Achieved       bool           `json:"achieved"`
}

// DayStatsFor summarizes events that all belong to one day. The day's date
// key is taken from the first event, so an empty slice is rejected.
func DayStatsFor(m Metric, events []model.Event, settings model.GoalSettings) (DayStats, error) {
	if len(events) == 0 {
		return DayStats{}, fmt.Errorf("%w: day stats require at least one event", ErrInvalidArgument)
	}
	stats := DayStats{
		DateKey: events[0].DateKey,
		Total:   WindowTotal(events),
	}

	order := make([]string, 0)
	byCategory := make(map[string][]model.Event)
	for _, e := range events {
		if _, ok := byCategory[e.Category]; !ok {
			order = append(order, e.Category)
		}
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	for _, c := range order {
		stats.Categories = append(stats.Categories, CategoryLine{Category: c, Summary: CompactSummary(byCategory[c])})
	}

	var goal float64
	if m.DailyGoal != nil {
		goal = m.DailyGoal(settings)
	}
	if goal > 0 {
		stats.CompletionRate = stats.Total / goal
	}
	stats.Status = StatusFromDayTotal(stats.Total, goal)
	switch m.Policy {
	case Ceiling:
		stats.Achieved = EvaluateCeiling(stats.Total, goal).WithinLimit
	case Floor:
		stats.Achieved = stats.Total >= goal
	}
	return stats, nil
}

// CategorySummary returns the summary line for category, or "".
func (d DayStats) CategorySummary(category string) string {
	for _, c := range d.Categories {
		if c.Category == category {
			return c.Summary
		}
	}
	return ""
}
