package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindBeauty   Kind = "beauty"
	KindUgly     Kind = "ugly"
	KindWellness Kind = "wellness"
	KindPleasure Kind = "pleasure"
)

// Kinds lists every event kind in display order.
var Kinds = []Kind{KindBeauty, KindUgly, KindWellness, KindPleasure}

// CatalogKinds are the kinds backed by an editable behavior catalog.
var CatalogKinds = []Kind{KindBeauty, KindUgly, KindWellness}

var categoriesByKind = map[Kind][]string{
	KindBeauty:   {"strength", "cardio"},
	KindUgly:     {"body", "mind"},
	KindWellness: {"supplement", "body-relax", "mind-relax"},
	KindPleasure: {"body-relax", "sensory", "mind", "creative", "blank", "other"},
}

// PleasureIntensities are the only accepted subjective intensity levels.
var PleasureIntensities = []int{3, 6, 10}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categoriesByKind[k]; !ok {
		return "", fmt.Errorf("invalid kind %q (use beauty, ugly, wellness, or pleasure)", raw)
	}
	return k, nil
}

func (k Kind) HasCatalog() bool {
	return k == KindBeauty || k == KindUgly || k == KindWellness
}

func (k Kind) Categories() []string {
	out := make([]string, len(categoriesByKind[k]))
	copy(out, categoriesByKind[k])
	return out
}

func (k Kind) ValidCategory(category string) bool {
	for _, c := range categoriesByKind[k] {
		if c == category {
			return true
		}
	}
	return false
}

// Event is one logged activity. The four kinds share a shape; pleasure
// events use Intensity as their score and Activity as their subtype name.
type Event struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	DateKey     string    `json:"dateKey"`
	Category    string    `json:"category"`
	SubtypeID   int64     `json:"subtypeId,omitempty"`
	SubtypeName string    `json:"subtypeName"`
	Unit        string    `json:"unit"`
	Amount      float64   `json:"amount"`
	GainedScore float64   `json:"gainedScore"`
	Intensity   int       `json:"intensity,omitempty"`
	Activity    string    `json:"activity,omitempty"`
	Note        string    `json:"note,omitempty"`
}

type BehaviorDefinition struct {
	ID          int64   `json:"id"`
	Kind        Kind    `json:"-"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	PerUnitRate float64 `json:"perUnitRate"`
}

// webCategories maps the category labels the web app stores to slugs.
var webCategories = map[string]string{
	"身体":   "body",
	"精神":   "mind",
	"补剂":   "supplement",
	"身体放松": "body-relax",
	"精神放松": "mind-relax",
	"感官享受": "sensory",
	"心智触动": "mind",
	"创造表达": "creative",
	"纯发呆":  "blank",
	"其他":   "other",
}

func canonicalCategory(c string) string {
	if slug, ok := webCategories[strings.TrimSpace(c)]; ok {
		return slug
	}
	return c
}

func firstInt(vals ...*int64) int64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}

// UnmarshalJSON also accepts rows written by the web app, which name the
// subtype and score fields per kind.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		ExerciseID     *int64   `json:"exerciseId"`
		BehaviorID     *int64   `json:"behaviorId"`
		ExerciseName   *string  `json:"exerciseName"`
		BehaviorName   *string  `json:"behaviorName"`
		BeautyGained   *float64 `json:"beautyGained"`
		UglyGained     *float64 `json:"uglyGained"`
		WellnessGained *float64 `json:"wellnessGained"`
		Score          *float64 `json:"score"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.SubtypeID == 0 {
		e.SubtypeID = firstInt(aux.ExerciseID, aux.BehaviorID)
	}
	if e.SubtypeName == "" {
		e.SubtypeName = firstString(aux.ExerciseName, aux.BehaviorName)
	}
	if e.GainedScore == 0 {
		e.GainedScore = firstFloat(aux.BeautyGained, aux.UglyGained, aux.WellnessGained, aux.Score)
	}
	e.Category = canonicalCategory(e.Category)
	return nil
}

func (b *BehaviorDefinition) UnmarshalJSON(data []byte) error {
	type plain BehaviorDefinition
	aux := struct {
		*plain
		BeautyPerUnit   *float64 `json:"beautyPerUnit"`
		UglyPerUnit     *float64 `json:"uglyPerUnit"`
		WellnessPerUnit *float64 `json:"wellnessPerUnit"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.PerUnitRate == 0 {
		b.PerUnitRate = firstFloat(aux.BeautyPerUnit, aux.UglyPerUnit, aux.WellnessPerUnit)
	}
	b.Category = canonicalCategory(b.Category)
	return nil
}

// GoalSettings holds the only persisted goals. Weekly, monthly, and health
// goals are always derived from these three numbers.
type GoalSettings struct {
	DailyBeautyFloor   float64 `json:"dailyBeautyGoal"`
	DailyUglyCeiling   float64 `json:"dailyUglyGoal"`
	DailyWellnessFloor float64 `json:"dailyWellnessGoal"`
}

func DefaultGoalSettings() GoalSettings {
	return GoalSettings{DailyBeautyFloor: 100}
}

// Snapshot is a complete copy of one account's data. It doubles as the
// export file format and the remote sync payload.
type Snapshot struct {
	Settings          GoalSettings         `json:"settings"`
	Exercises         []BehaviorDefinition `json:"exercises"`
	UglyBehaviors     []BehaviorDefinition `json:"ugly_behaviors"`
	WellnessBehaviors []BehaviorDefinition `json:"wellness_behaviors"`
	Entries           []Event              `json:"entries"`
	UglyEntries       []Event              `json:"ugly_entries"`
	WellnessEntries   []Event              `json:"wellness_entries"`
	PleasureEntries   []Event              `json:"pleasure_entries"`
	UpdatedAt         time.Time            `json:"updated_at,omitempty"`
}

func (s *Snapshot) EventsOf(kind Kind) []Event {
	if s == nil {
		return nil
	}
	switch kind {
	case KindBeauty:
		return s.Entries
	case KindUgly:
		return s.UglyEntries
	case KindWellness:
		return s.WellnessEntries
	case KindPleasure:
		return s.PleasureEntries
	}
	return nil
}

func (s *Snapshot) CatalogOf(kind Kind) []BehaviorDefinition {
	if s == nil {
		return nil
	}
	switch kind {
	case KindBeauty:
		return s.Exercises
	case KindUgly:
		return s.UglyBehaviors
	case KindWellness:
		return s.WellnessBehaviors
	}
	return nil
}

// Normalize fills in kinds lost by the JSON shape, which stores each kind in
// its own list.
func (s *Snapshot) Normalize() {
	if s == nil {
		return
	}
	for _, kind := range Kinds {
		events := s.EventsOf(kind)
		for i := range events {
			events[i].Kind = kind
		}
	}
	for _, kind := range CatalogKinds {
		defs := s.CatalogOf(kind)
		for i := range defs {
			defs[i].Kind = kind
		}
	}
}

// AddEvent appends e to the list matching its kind.
func (s *Snapshot) AddEvent(e Event) {
	switch e.Kind {
	case KindBeauty:
		s.Entries = append(s.Entries, e)
	case KindUgly:
		s.UglyEntries = append(s.UglyEntries, e)
	case KindWellness:
		s.WellnessEntries = append(s.WellnessEntries, e)
	case KindPleasure:
		s.PleasureEntries = append(s.PleasureEntries, e)
	}
}

func (s *Snapshot) AddBehavior(b BehaviorDefinition) {
	switch b.Kind {
	case KindBeauty:
		s.Exercises = append(s.Exercises, b)
	case KindUgly:
		s.UglyBehaviors = append(s.UglyBehaviors, b)
	case KindWellness:
		s.WellnessBehaviors = append(s.WellnessBehaviors, b)
	}
}

func (s *Snapshot) EventCount() int {
	return len(s.Entries) + len(s.UglyEntries) + len(s.WellnessEntries) + len(s.PleasureEntries)
}
