package service_test

import (
	"testing"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

func TestBehaviorCatalogCRUD(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	defs, err := service.ListBehaviors(sqldb, model.KindWellness)
	if err != nil {
		t.Fatalf("list behaviors: %v", err)
	}
	if len(defs) != 3 || defs[0].ID != 1 || defs[0].Kind != model.KindWellness {
		t.Fatalf("unexpected seeded wellness catalog %+v", defs)
	}

	added, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindWellness, Category: "Body-Relax", Name: "Sauna", Unit: "min", PerUnitRate: 0.75})
	if err != nil {
		t.Fatalf("add behavior: %v", err)
	}
	if added.ID != 4 || added.Category != "body-relax" {
		t.Fatalf("expected max+1 id and normalized category, got %+v", added)
	}

	if err := service.RemoveBehavior(sqldb, model.KindWellness, 4, fixedNow); err != nil {
		t.Fatalf("remove behavior: %v", err)
	}
	again, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindWellness, Category: "supplement", Name: "Fish oil", Unit: "dose", PerUnitRate: 1})
	if err != nil {
		t.Fatalf("add behavior: %v", err)
	}
	if again.ID != 4 {
		t.Fatalf("expected id reuse after removing the max, got %d", again.ID)
	}

	// Negative rates are allowed; zero-rate behaviors are tracked but score nothing.
	neg, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindBeauty, Category: "cardio", Name: "Escalator", Unit: "times", PerUnitRate: -0.5})
	if err != nil {
		t.Fatalf("add negative-rate behavior: %v", err)
	}
	if neg.ID != 12 {
		t.Fatalf("expected id 12 after 11 seeded exercises, got %d", neg.ID)
	}

	updated, err := service.UpdateBehavior(sqldb, service.UpdateBehaviorInput{Kind: model.KindUgly, ID: 1, Unit: strPtr("hours"), PerUnitRate: floatPtr(3)})
	if err != nil {
		t.Fatalf("update behavior: %v", err)
	}
	if updated.Name != "Late night" || updated.Unit != "hours" || updated.PerUnitRate != 3 {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestBehaviorValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindUgly, Category: "strength", Name: "x"}); err == nil {
		t.Fatalf("expected category error")
	}
	if _, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindBeauty, Category: "cardio", Name: " "}); err == nil {
		t.Fatalf("expected name error")
	}
	if _, err := service.AddBehavior(sqldb, service.BehaviorInput{Kind: model.KindPleasure, Category: "mind", Name: "x"}); err == nil {
		t.Fatalf("expected pleasure to have no catalog")
	}
	if _, err := service.UpdateBehavior(sqldb, service.UpdateBehaviorInput{Kind: model.KindBeauty, ID: 99, Name: strPtr("x")}); err == nil {
		t.Fatalf("expected not found")
	}
	if err := service.RemoveBehavior(sqldb, model.KindBeauty, 99, fixedNow); err == nil {
		t.Fatalf("expected not found")
	}
}
