package score

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

// TrendRanges are the supported trend lengths in days.
var TrendRanges = []int{7, 14, 30}

type TrendPoint struct {
	DateKey  string  `json:"date"`
	Label    string  `json:"label"`
	Beauty   float64 `json:"beauty"`
	Pleasure float64 `json:"pleasure"`
}

type TrendSeries struct {
	Days        int          `json:"days"`
	Points      []TrendPoint `json:"points"`
	MaxBeauty   float64      `json:"maxBeauty"`
	MaxPleasure float64      `json:"maxPleasure"`
	// MaxAll is the shared chart scale; never below 1.
	MaxAll float64 `json:"maxAll"`
}

// Trend returns daily beauty and pleasure totals for the last days days,
// oldest first, ending on now's calendar day.
func Trend(snap *model.Snapshot, now time.Time, days int) (TrendSeries, error) {
	valid := false
	for _, d := range TrendRanges {
		valid = valid || d == days
	}
	if !valid {
		return TrendSeries{}, fmt.Errorf("%w: trend range %d (use 7, 14, or 30)", ErrInvalidArgument, days)
	}

	beauty := dailyTotals(snap.EventsOf(model.KindBeauty))
	pleasure := dailyTotals(snap.EventsOf(model.KindPleasure))

	today := ToDateKey(now)
	series := TrendSeries{Days: days, Points: make([]TrendPoint, 0, days)}
	for i := days - 1; i >= 0; i-- {
		key, err := AddDays(today, -i)
		if err != nil {
			return TrendSeries{}, err
		}
		p := TrendPoint{
			DateKey:  key,
			Label:    strings.Replace(key[5:], "-", "/", 1),
			Beauty:   WindowTotal(beauty[key]),
			Pleasure: WindowTotal(pleasure[key]),
		}
		series.MaxBeauty = math.Max(series.MaxBeauty, p.Beauty)
		series.MaxPleasure = math.Max(series.MaxPleasure, p.Pleasure)
		series.Points = append(series.Points, p)
	}
	series.MaxAll = math.Max(math.Max(series.MaxBeauty, series.MaxPleasure), 1)
	return series, nil
}

func dailyTotals(events []model.Event) map[string][]model.Event {
	out := make(map[string][]model.Event)
	for _, e := range events {
		out[e.DateKey] = append(out[e.DateKey], e)
	}
	return out
}
