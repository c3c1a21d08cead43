package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

func TestLoadSnapshotGroupsByKindInChronologicalOrder(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.LogEvent(sqldb, service.LogEventInput{Kind: model.KindBeauty, BehaviorID: 4, Amount: 10, Now: fixedNow}); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if _, err := service.LogEvent(sqldb, service.LogEventInput{Kind: model.KindBeauty, BehaviorID: 5, Amount: 20, Date: "2026-02-11", Now: fixedNow}); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if _, err := service.LogPleasure(sqldb, service.PleasureInput{Category: "creative", Activity: "Sketching", Intensity: 10, Now: fixedNow}); err != nil {
		t.Fatalf("log pleasure: %v", err)
	}

	snap, err := service.LoadSnapshot(sqldb)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snap.Entries) != 2 || snap.Entries[0].DateKey != "2026-02-11" {
		t.Fatalf("expected chronological beauty entries, got %+v", snap.Entries)
	}
	if len(snap.PleasureEntries) != 1 || len(snap.UglyEntries) != 0 {
		t.Fatalf("unexpected kind grouping %+v", snap)
	}
	if len(snap.Exercises) != 11 || len(snap.UglyBehaviors) != 5 || len(snap.WellnessBehaviors) != 3 {
		t.Fatalf("unexpected catalogs in snapshot")
	}
	if snap.UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at after writes")
	}
}

func TestExportImportRoundTripIntoFreshDB(t *testing.T) {
	t.Parallel()
	src := newTestDB(t)

	if _, err := service.SetGoalSettings(src, service.GoalSettingsUpdate{DailyWellnessFloor: floatPtr(15)}); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	if _, err := service.AddBehavior(src, service.BehaviorInput{Kind: model.KindUgly, Category: "mind", Name: "Rumination", Unit: "min", PerUnitRate: 0.2}); err != nil {
		t.Fatalf("add behavior: %v", err)
	}
	logged, err := service.LogEvent(src, service.LogEventInput{Kind: model.KindUgly, BehaviorID: 6, Amount: 30, Now: fixedNow})
	if err != nil {
		t.Fatalf("log event: %v", err)
	}

	snap, err := service.LoadSnapshot(src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var decoded model.Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	dst := newTestDB(t)
	report, err := service.ImportSnapshot(dst, &decoded, service.ImportOptions{Mode: service.ImportModeMerge, Now: fixedNow})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Inserted != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected import report %+v", report)
	}

	events, err := service.ListEvents(dst, service.EventFilter{Kind: model.KindUgly})
	if err != nil {
		t.Fatalf("list imported events: %v", err)
	}
	if len(events) != 1 || events[0].ID != logged.ID || events[0].GainedScore != 6 || events[0].SubtypeName != "Rumination" {
		t.Fatalf("unexpected imported events %+v", events)
	}
	goals, err := service.GetGoalSettings(dst)
	if err != nil {
		t.Fatalf("get goals: %v", err)
	}
	if goals.DailyWellnessFloor != 15 {
		t.Fatalf("expected imported goals, got %+v", goals)
	}

	again, err := service.ImportSnapshot(dst, &decoded, service.ImportOptions{Mode: service.ImportModeMerge, Now: fixedNow})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 1 {
		t.Fatalf("expected merge to skip known event ids, got %+v", again)
	}
}

func TestReplaceSnapshotDropsLocalEventsAndKeepsMissingCatalogs(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.LogEvent(sqldb, service.LogEventInput{Kind: model.KindBeauty, BehaviorID: 1, Amount: 4, Now: fixedNow}); err != nil {
		t.Fatalf("log event: %v", err)
	}

	remote := &model.Snapshot{
		Settings: model.GoalSettings{DailyBeautyFloor: 80},
		UglyBehaviors: []model.BehaviorDefinition{
			{ID: 1, Category: "mind", Name: "Overthinking", Unit: "min", PerUnitRate: 0.1},
		},
		PleasureEntries: []model.Event{
			{ID: "p-1", DateKey: "2026-02-12", Category: "mind", Activity: "Novel", Intensity: 3},
			{ID: "p-2", DateKey: "2026-02-12", Category: "mind", Activity: "Bad", Intensity: 4},
		},
	}
	report, err := service.ReplaceSnapshot(sqldb, remote, fixedNow)
	if err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}
	if report.Inserted != 1 || report.Skipped != 1 || len(report.Warnings) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	snap, err := service.LoadSnapshot(sqldb)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snap.Entries) != 0 || len(snap.PleasureEntries) != 1 {
		t.Fatalf("expected local events replaced, got %d beauty %d pleasure", len(snap.Entries), len(snap.PleasureEntries))
	}
	p := snap.PleasureEntries[0]
	if p.GainedScore != 3 || p.SubtypeName != "Novel" || p.Kind != model.KindPleasure {
		t.Fatalf("unexpected normalized pleasure event %+v", p)
	}
	if len(snap.Exercises) != 11 {
		t.Fatalf("expected beauty catalog kept when remote has none, got %d", len(snap.Exercises))
	}
	if len(snap.UglyBehaviors) != 1 || snap.UglyBehaviors[0].Name != "Overthinking" {
		t.Fatalf("expected ugly catalog replaced, got %+v", snap.UglyBehaviors)
	}
	if snap.Settings.DailyBeautyFloor != 80 {
		t.Fatalf("expected remote settings, got %+v", snap.Settings)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	snap := &model.Snapshot{
		Settings: model.GoalSettings{DailyBeautyFloor: 5},
		Entries: []model.Event{
			{ID: "b-1", Timestamp: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC), Category: "strength", SubtypeName: "Push-ups", Unit: "reps", Amount: 10, GainedScore: 10},
			{ID: "b-2", DateKey: "2026-02-10", Category: "strength", SubtypeName: "Push-ups", Amount: 0},
		},
	}
	report, err := service.ImportSnapshot(sqldb, snap, service.ImportOptions{Mode: service.ImportModeReplace, DryRun: true})
	if err != nil {
		t.Fatalf("dry run import: %v", err)
	}
	if report.Inserted != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected dry run report %+v", report)
	}
	events, err := service.ListEvents(sqldb, service.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	goals, err := service.GetGoalSettings(sqldb)
	if err != nil {
		t.Fatalf("get goals: %v", err)
	}
	if len(events) != 0 || goals.DailyBeautyFloor != 100 {
		t.Fatalf("dry run changed data: %d events, goals %+v", len(events), goals)
	}

	if _, err := service.ParseImportMode("overwrite"); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

func TestImportFillsDateKeyFromLocalDay(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	snap := &model.Snapshot{
		Entries: []model.Event{
			{ID: "early-1", Timestamp: time.Date(2026, 2, 12, 23, 0, 0, 0, time.UTC), Category: "strength", SubtypeName: "Push-ups", Unit: "reps", Amount: 10, GainedScore: 10},
		},
	}
	report, err := service.ImportSnapshot(sqldb, snap, service.ImportOptions{Mode: service.ImportModeMerge, Now: fixedNow, Location: shanghai})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Inserted != 1 {
		t.Fatalf("unexpected import report %+v", report)
	}
	events, err := service.ListEvents(sqldb, service.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].DateKey != "2026-02-13" {
		t.Fatalf("expected local date key 2026-02-13, got %+v", events)
	}
}
