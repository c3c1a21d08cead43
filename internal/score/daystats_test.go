package score_test

import (
	"testing"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
)

func TestDayStatsGroupsByCategory(t *testing.T) {
	t.Parallel()
	cardio := event(model.KindBeauty, "2026-02-13", "cardio", "Running", "min", 30, 60)
	events := []model.Event{
		beauty("2026-02-13", "Push-ups", 20, 20),
		cardio,
		beauty("2026-02-13", "Squats", 10, 5),
		beauty("2026-02-13", "Push-ups", 10, 10),
	}
	stats, err := score.DayStatsFor(score.BeautyMetric, events, model.GoalSettings{DailyBeautyFloor: 100})
	if err != nil {
		t.Fatalf("day stats: %v", err)
	}
	if stats.DateKey != "2026-02-13" || stats.Total != 95 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.Categories) != 2 || stats.Categories[0].Category != "strength" {
		t.Fatalf("expected strength then cardio, got %+v", stats.Categories)
	}
	if got := stats.CategorySummary("strength"); got != "Push-ups30，Squats10" {
		t.Fatalf("unexpected strength summary %q", got)
	}
	if got := stats.CategorySummary("cardio"); got != "Running30" {
		t.Fatalf("unexpected cardio summary %q", got)
	}
	if got := stats.CategorySummary("mind"); got != "" {
		t.Fatalf("expected empty summary for missing category, got %q", got)
	}
	if stats.Status != score.StatusLow || stats.Achieved || stats.CompletionRate != 0.95 {
		t.Fatalf("unexpected day rating %+v", stats)
	}
}

func TestDayStatsTiers(t *testing.T) {
	t.Parallel()
	settings := model.GoalSettings{DailyBeautyFloor: 100}
	ok, err := score.DayStatsFor(score.BeautyMetric, []model.Event{beauty("2026-02-13", "Plank", 1, 110)}, settings)
	if err != nil {
		t.Fatalf("day stats: %v", err)
	}
	if ok.Status != score.StatusOK || !ok.Achieved {
		t.Fatalf("expected ok day, got %+v", ok)
	}
	great, err := score.DayStatsFor(score.BeautyMetric, []model.Event{beauty("2026-02-13", "Plank", 1, 150)}, settings)
	if err != nil {
		t.Fatalf("day stats: %v", err)
	}
	if great.Status != score.StatusGreat {
		t.Fatalf("expected great day, got %+v", great)
	}
}

func TestDayStatsCeilingMetric(t *testing.T) {
	t.Parallel()
	events := []model.Event{event(model.KindUgly, "2026-02-13", "mind", "Doomscrolling", "min", 30, 15)}
	stats, err := score.DayStatsFor(score.UglyMetric, events, model.GoalSettings{DailyUglyCeiling: 10})
	if err != nil {
		t.Fatalf("day stats: %v", err)
	}
	if stats.Achieved {
		t.Fatalf("expected ceiling to be exceeded, got %+v", stats)
	}
}
