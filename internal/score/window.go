package score

import (
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return p, nil
	case "":
		return PeriodToday, nil
	}
	return "", fmt.Errorf("%w: period %q (use today, week, or month)", ErrInvalidArgument, raw)
}

// Window is a calendar range [StartKey, EndKey] ending on the evaluation day.
// Days is the full length of the calendar period and Elapsed the number of
// days of it that have started, both used for goal scaling and pacing.
type Window struct {
	Period   Period `json:"period"`
	Label    string `json:"label"`
	StartKey string `json:"start"`
	EndKey   string `json:"end"`
	Days     int    `json:"days"`
	Elapsed  int    `json:"elapsed"`
}

func WindowFor(period Period, now time.Time) Window {
	today := ToDateKey(now)
	switch period {
	case PeriodWeek:
		return Window{
			Period:   PeriodWeek,
			Label:    "This week",
			StartKey: ToDateKey(WeekStart(now)),
			EndKey:   today,
			Days:     7,
			Elapsed:  DaysElapsedInWeek(now),
		}
	case PeriodMonth:
		return Window{
			Period:   PeriodMonth,
			Label:    "This month",
			StartKey: ToDateKey(MonthStart(now)),
			EndKey:   today,
			Days:     DaysInMonth(now),
			Elapsed:  DaysElapsedInMonth(now),
		}
	default:
		return Window{
			Period:   PeriodToday,
			Label:    "Today",
			StartKey: today,
			EndKey:   today,
			Days:     1,
			Elapsed:  1,
		}
	}
}

// Windows returns today, this week, and this month for now.
func Windows(now time.Time) []Window {
	return []Window{
		WindowFor(PeriodToday, now),
		WindowFor(PeriodWeek, now),
		WindowFor(PeriodMonth, now),
	}
}

// WindowEvents keeps events whose date key lies in [startKey, todayKey],
// preserving input order.
func WindowEvents(all []model.Event, startKey, todayKey string) []model.Event {
	out := make([]model.Event, 0)
	for _, e := range all {
		if e.DateKey >= startKey && e.DateKey <= todayKey {
			out = append(out, e)
		}
	}
	return out
}

// Select is WindowEvents over w.
func (w Window) Select(all []model.Event) []model.Event {
	return WindowEvents(all, w.StartKey, w.EndKey)
}

// WindowTotal sums gained scores in fixed point. Each score was rounded when
// it was logged, so the total is exact in hundredths and is not re-rounded.
func WindowTotal(events []model.Event) float64 {
	values := make([]float64, len(events))
	for i, e := range events {
		values[i] = e.GainedScore
	}
	return sumDecimal(values).InexactFloat64()
}
