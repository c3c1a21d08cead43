package score

import (
	"github.com/shopspring/decimal"

	"github.com/saadjs/checkin-cli/internal/model"
)

type HealthWindow struct {
	Value       float64 `json:"value"`
	Goal        float64 `json:"goal"`
	Achieved    bool    `json:"achieved"`
	FillPercent float64 `json:"fillPercent"`
}

// HealthValue is beauty - ugly + wellness, rounded to hundredths.
func HealthValue(beauty, ugly, wellness float64) float64 {
	v := decimal.NewFromFloat(beauty).
		Sub(decimal.NewFromFloat(ugly)).
		Add(decimal.NewFromFloat(wellness))
	return v.Round(scorePlaces).InexactFloat64()
}

// HealthGoal scales each daily sub-goal to the window, then combines them.
func HealthGoal(s model.GoalSettings, w Window) float64 {
	return ScaleGoal(s.DailyBeautyFloor, w) - ScaleGoal(s.DailyUglyCeiling, w) + ScaleGoal(s.DailyWellnessFloor, w)
}

// EvaluateHealth treats any goal <= 0 as trivially achieved, including
// negative composite goals.
func EvaluateHealth(value, goal float64) HealthWindow {
	hw := HealthWindow{
		Value:    value,
		Goal:     goal,
		Achieved: goal <= 0 || value >= goal,
	}
	switch {
	case goal > 0:
		hw.FillPercent = ClampPercent(value / goal * 100)
	case value > 0:
		hw.FillPercent = 100
	}
	return hw
}
