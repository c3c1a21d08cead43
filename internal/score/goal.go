package score

import (
	"errors"
	"math"

	"github.com/saadjs/checkin-cli/internal/model"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Policy decides how a window total is judged against its goal.
type Policy int

const (
	// Untracked metrics report totals only.
	Untracked Policy = iota
	// Floor goals are minimums: reaching them is success.
	Floor
	// Ceiling goals are limits: staying at or under them is success.
	Ceiling
)

func (p Policy) String() string {
	switch p {
	case Floor:
		return "floor"
	case Ceiling:
		return "ceiling"
	}
	return "untracked"
}

// FloorStatus keeps raw ratios unclamped; only the *Percent fields are
// clamped to [0, 100] for display.
type FloorStatus struct {
	CompletionRate    float64 `json:"completionRate"`
	Remaining         float64 `json:"remaining"`
	Achieved          bool    `json:"achieved"`
	HasPace           bool    `json:"hasPace"`
	TimeProgressRate  float64 `json:"timeProgressRate"`
	CompletionPercent float64 `json:"completionPercent"`
	PacePercent       float64 `json:"pacePercent"`
}

type CeilingStatus struct {
	WithinLimit bool    `json:"withinLimit"`
	FillPercent float64 `json:"fillPercent"`
}

// ClampPercent bounds a display percentage to [0, 100].
func ClampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ScaleGoal turns a daily goal into the goal for the whole window.
func ScaleGoal(daily float64, w Window) float64 {
	return daily * float64(w.Days)
}

func EvaluateFloor(total, goal float64, w Window) FloorStatus {
	st := FloorStatus{
		Achieved:  total >= goal,
		Remaining: math.Max(goal-total, 0),
	}
	switch {
	case goal > 0:
		st.CompletionRate = total / goal
	case total > 0:
		st.CompletionRate = 1
	}
	st.CompletionPercent = ClampPercent(st.CompletionRate * 100)

	// No sub-day pacing: today reports raw completion only.
	if w.Period != PeriodToday && w.Days > 0 {
		st.HasPace = true
		pace := goal * float64(w.Elapsed) / float64(w.Days)
		if pace > 0 {
			st.TimeProgressRate = total / pace
		}
		st.PacePercent = ClampPercent(st.TimeProgressRate * 100)
	}
	return st
}

func EvaluateCeiling(total, goal float64) CeilingStatus {
	st := CeilingStatus{WithinLimit: goal <= 0 || total <= goal}
	if goal > 0 {
		st.FillPercent = ClampPercent(total / goal * 100)
	}
	return st
}

// DayStatus is the three-tier rating used by the day table.
type DayStatus string

const (
	StatusLow   DayStatus = "low"
	StatusOK    DayStatus = "ok"
	StatusGreat DayStatus = "great"
)

// StatusFromDayTotal rates a day against its daily goal: below 100% is low,
// below 120% ok, otherwise great. Without a positive goal a day is low.
func StatusFromDayTotal(dayTotal, dailyGoal float64) DayStatus {
	if dailyGoal <= 0 {
		return StatusLow
	}
	rate := dayTotal / dailyGoal
	switch {
	case rate < 1:
		return StatusLow
	case rate < 1.2:
		return StatusOK
	}
	return StatusGreat
}

// Metric describes how one event kind is scored against the settings.
type Metric struct {
	Kind      model.Kind
	Label     string
	Policy    Policy
	DailyGoal func(model.GoalSettings) float64
}

var (
	BeautyMetric = Metric{
		Kind:      model.KindBeauty,
		Label:     "Beauty",
		Policy:    Floor,
		DailyGoal: func(s model.GoalSettings) float64 { return s.DailyBeautyFloor },
	}
	UglyMetric = Metric{
		Kind:      model.KindUgly,
		Label:     "Ugly",
		Policy:    Ceiling,
		DailyGoal: func(s model.GoalSettings) float64 { return s.DailyUglyCeiling },
	}
	WellnessMetric = Metric{
		Kind:      model.KindWellness,
		Label:     "Wellness",
		Policy:    Floor,
		DailyGoal: func(s model.GoalSettings) float64 { return s.DailyWellnessFloor },
	}
	PleasureMetric = Metric{
		Kind:   model.KindPleasure,
		Label:  "Pleasure",
		Policy: Untracked,
	}
)

func MetricFor(kind model.Kind) Metric {
	switch kind {
	case model.KindUgly:
		return UglyMetric
	case model.KindWellness:
		return WellnessMetric
	case model.KindPleasure:
		return PleasureMetric
	}
	return BeautyMetric
}

// MetricCard is one metric's result for one window. Exactly one of Floor and
// Ceiling is set for tracked metrics; both are nil for untracked ones.
type MetricCard struct {
	Kind    model.Kind     `json:"kind"`
	Label   string         `json:"label"`
	Total   float64        `json:"total"`
	Goal    float64        `json:"goal"`
	Summary string         `json:"summary"`
	Floor   *FloorStatus   `json:"floor,omitempty"`
	Ceiling *CeilingStatus `json:"ceiling,omitempty"`
}

// Achieved folds either policy into a single verdict. Untracked metrics are
// never achieved.
func (c MetricCard) Achieved() bool {
	switch {
	case c.Floor != nil:
		return c.Floor.Achieved
	case c.Ceiling != nil:
		return c.Ceiling.WithinLimit
	}
	return false
}

// Aggregate selects m's events inside w and evaluates them against the
// scaled goal.
func Aggregate(m Metric, events []model.Event, settings model.GoalSettings, w Window) MetricCard {
	selected := w.Select(events)
	card := MetricCard{
		Kind:    m.Kind,
		Label:   m.Label,
		Total:   WindowTotal(selected),
		Summary: Summarize(selected),
	}
	if m.DailyGoal != nil {
		card.Goal = ScaleGoal(m.DailyGoal(settings), w)
	}
	switch m.Policy {
	case Floor:
		st := EvaluateFloor(card.Total, card.Goal, w)
		card.Floor = &st
	case Ceiling:
		st := EvaluateCeiling(card.Total, card.Goal)
		card.Ceiling = &st
	}
	return card
}
