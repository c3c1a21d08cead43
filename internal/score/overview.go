package score

import (
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

// PeriodView is every metric evaluated over one window.
type PeriodView struct {
	Window   Window       `json:"window"`
	Beauty   MetricCard   `json:"beauty"`
	Ugly     MetricCard   `json:"ugly"`
	Wellness MetricCard   `json:"wellness"`
	Pleasure MetricCard   `json:"pleasure"`
	Health   HealthWindow `json:"health"`
}

type Overview struct {
	Today   string       `json:"today"`
	Periods []PeriodView `json:"periods"`
}

func BuildPeriod(snap *model.Snapshot, now time.Time, period Period) PeriodView {
	var settings model.GoalSettings
	if snap != nil {
		settings = snap.Settings
	}
	w := WindowFor(period, now)
	v := PeriodView{
		Window:   w,
		Beauty:   Aggregate(BeautyMetric, snap.EventsOf(model.KindBeauty), settings, w),
		Ugly:     Aggregate(UglyMetric, snap.EventsOf(model.KindUgly), settings, w),
		Wellness: Aggregate(WellnessMetric, snap.EventsOf(model.KindWellness), settings, w),
		Pleasure: Aggregate(PleasureMetric, snap.EventsOf(model.KindPleasure), settings, w),
	}
	value := HealthValue(v.Beauty.Total, v.Ugly.Total, v.Wellness.Total)
	v.Health = EvaluateHealth(value, HealthGoal(settings, w))
	return v
}

// BuildOverview evaluates today, this week, and this month.
func BuildOverview(snap *model.Snapshot, now time.Time) Overview {
	out := Overview{Today: ToDateKey(now)}
	for _, w := range Windows(now) {
		out.Periods = append(out.Periods, BuildPeriod(snap, now, w.Period))
	}
	return out
}

// Period returns the view for p, or false when it was not built.
func (o Overview) Period(p Period) (PeriodView, bool) {
	for _, v := range o.Periods {
		if v.Window.Period == p {
			return v, true
		}
	}
	return PeriodView{}, false
}
