package score_test

import (
	"fmt"
	"sync/atomic"

	"github.com/saadjs/checkin-cli/internal/model"
)

var seq atomic.Int64

func event(kind model.Kind, dateKey, category, name, unit string, amount, gained float64) model.Event {
	return model.Event{
		ID:          fmt.Sprintf("evt-%d", seq.Add(1)),
		Kind:        kind,
		DateKey:     dateKey,
		Category:    category,
		SubtypeName: name,
		Unit:        unit,
		Amount:      amount,
		GainedScore: gained,
	}
}

func beauty(dateKey, name string, amount, gained float64) model.Event {
	return event(model.KindBeauty, dateKey, "strength", name, "reps", amount, gained)
}
