package score

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/saadjs/checkin-cli/internal/model"
)

// SummarySeparator joins grouped summary parts.
const SummarySeparator = "，"

type subtypeGroup struct {
	name   string
	unit   string
	amount decimal.Decimal
}

// groupBySubtype sums amounts per subtype name, keeping the order in which
// each name first appears.
func groupBySubtype(events []model.Event) []subtypeGroup {
	groups := make([]subtypeGroup, 0)
	index := make(map[string]int)
	for _, e := range events {
		i, ok := index[e.SubtypeName]
		if !ok {
			index[e.SubtypeName] = len(groups)
			groups = append(groups, subtypeGroup{name: e.SubtypeName, unit: e.Unit, amount: decimal.NewFromFloat(e.Amount)})
			continue
		}
		groups[i].amount = groups[i].amount.Add(decimal.NewFromFloat(e.Amount))
	}
	return groups
}

// Summarize renders "name total-amount unit" per subtype, e.g.
// "Push-ups 30reps，Squats 20reps".
func Summarize(events []model.Event) string {
	if len(events) == 0 {
		return ""
	}
	groups := groupBySubtype(events)
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.name+" "+g.amount.String()+g.unit)
	}
	return strings.Join(parts, SummarySeparator)
}

// CompactSummary is the history-table variant without unit or space,
// e.g. "Push-ups30，Squats20".
func CompactSummary(events []model.Event) string {
	if len(events) == 0 {
		return ""
	}
	groups := groupBySubtype(events)
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.name+g.amount.String())
	}
	return strings.Join(parts, SummarySeparator)
}
