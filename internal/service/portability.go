package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
)

type ImportMode string

const (
	// ImportModeMerge upserts catalogs and settings and adds events whose ids
	// are not already stored.
	ImportModeMerge ImportMode = "merge"
	// ImportModeReplace discards all local data first.
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
	Now    time.Time
	// Location is the zone whose calendar day a filled-in date key names.
	// Nil means time.Local.
	Location *time.Location
}

type ImportReport struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

func ParseImportMode(raw string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "", ImportModeMerge:
		return ImportModeMerge, nil
	case ImportModeReplace:
		return m, nil
	}
	return "", fmt.Errorf("invalid import mode %q (use merge or replace)", raw)
}

// LoadSnapshot reads every catalog and event list in full. Events within a
// list are in chronological order.
func LoadSnapshot(db *sql.DB) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	settings, err := GetGoalSettings(db)
	if err != nil {
		return nil, err
	}
	snap.Settings = settings

	for _, kind := range model.CatalogKinds {
		defs, err := ListBehaviors(db, kind)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			snap.AddBehavior(d)
		}
	}

	rows, err := db.Query(`SELECT ` + eventColumns + ` FROM events ORDER BY date_key ASC, occurred_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		snap.AddEvent(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	updatedAt, err := ConfigTime(db, ConfigDataUpdatedAt)
	if err != nil {
		return nil, err
	}
	snap.UpdatedAt = updatedAt
	return snap, nil
}

// ReplaceSnapshot swaps all local data for snap in one transaction.
func ReplaceSnapshot(db *sql.DB, snap *model.Snapshot, now time.Time) (ImportReport, error) {
	return ImportSnapshot(db, snap, ImportOptions{Mode: ImportModeReplace, Now: now})
}

func ImportSnapshot(db *sql.DB, snap *model.Snapshot, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if snap == nil {
		return report, fmt.Errorf("import data is empty")
	}
	snap.Normalize()
	mode, err := ParseImportMode(string(opts.Mode))
	if err != nil {
		return report, err
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace && !opts.DryRun {
		if err := clearUserData(tx, snap); err != nil {
			return report, err
		}
	}

	settings := model.GoalSettings{
		DailyBeautyFloor:   finiteOrZero(snap.Settings.DailyBeautyFloor),
		DailyUglyCeiling:   finiteOrZero(snap.Settings.DailyUglyCeiling),
		DailyWellnessFloor: finiteOrZero(snap.Settings.DailyWellnessFloor),
	}
	if settings.DailyBeautyFloor < 0 || settings.DailyUglyCeiling < 0 || settings.DailyWellnessFloor < 0 {
		report.Warnings = append(report.Warnings, "negative goals were reset to 0")
		settings.DailyBeautyFloor = max(settings.DailyBeautyFloor, 0)
		settings.DailyUglyCeiling = max(settings.DailyUglyCeiling, 0)
		settings.DailyWellnessFloor = max(settings.DailyWellnessFloor, 0)
	}
	if !opts.DryRun {
		if err := writeGoalSettings(tx, settings); err != nil {
			return report, err
		}
	}

	for _, kind := range model.CatalogKinds {
		for _, b := range snap.CatalogOf(kind) {
			if b.ID <= 0 || strings.TrimSpace(b.Name) == "" || !kind.ValidCategory(b.Category) {
				report.Skipped++
				report.Warnings = append(report.Warnings, fmt.Sprintf("skipped invalid %s behavior %d %q", kind, b.ID, b.Name))
				continue
			}
			if opts.DryRun {
				report.Inserted++
				continue
			}
			res, err := tx.Exec(`
INSERT INTO behaviors(kind, id, category, name, unit, per_unit_rate)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(kind, id) DO UPDATE SET category=excluded.category, name=excluded.name, unit=excluded.unit, per_unit_rate=excluded.per_unit_rate, updated_at=CURRENT_TIMESTAMP
`, string(kind), b.ID, b.Category, strings.TrimSpace(b.Name), strings.TrimSpace(b.Unit), finiteOrZero(b.PerUnitRate))
			if err != nil {
				return report, fmt.Errorf("import %s behavior %d: %w", kind, b.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				report.Updated++
			}
		}
	}

	for _, kind := range model.Kinds {
		for _, e := range snap.EventsOf(kind) {
			normalized, err := normalizeImportedEvent(e, opts.Location)
			if err != nil {
				report.Skipped++
				report.Warnings = append(report.Warnings, err.Error())
				continue
			}
			if opts.DryRun {
				report.Inserted++
				continue
			}
			var exists int
			err = tx.QueryRow(`SELECT 1 FROM events WHERE id = ?`, normalized.ID).Scan(&exists)
			if err == nil {
				report.Skipped++
				continue
			}
			if err != sql.ErrNoRows {
				return report, fmt.Errorf("check existing event %s: %w", normalized.ID, err)
			}
			if err := insertEvent(tx, normalized); err != nil {
				return report, err
			}
			report.Inserted++
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := markChanged(tx, opts.Now); err != nil {
		return report, err
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}
	return report, nil
}

// normalizeImportedEvent fills ids and date keys missing from hand-edited
// files and rejects events the engine could not score.
func normalizeImportedEvent(e model.Event, loc *time.Location) (model.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		if !score.ValidDateKey(e.DateKey) {
			return e, fmt.Errorf("skipped %s event %s without timestamp or valid date", e.Kind, e.ID)
		}
		t, err := score.FromDateKey(e.DateKey, loc)
		if err != nil {
			return e, err
		}
		e.Timestamp = t
	}
	if e.DateKey == "" {
		e.DateKey = score.LocalDateKey(e.Timestamp, loc)
	}
	if !score.ValidDateKey(e.DateKey) {
		return e, fmt.Errorf("skipped %s event %s with invalid date %q", e.Kind, e.ID, e.DateKey)
	}
	if !e.Kind.ValidCategory(e.Category) {
		return e, fmt.Errorf("skipped %s event %s with unknown category %q", e.Kind, e.ID, e.Category)
	}
	if e.Kind == model.KindPleasure {
		gained := score.PleasureScore(e.Intensity)
		if gained == 0 {
			return e, fmt.Errorf("skipped pleasure event %s with intensity %d", e.ID, e.Intensity)
		}
		e.GainedScore = gained
		if e.SubtypeName == "" {
			e.SubtypeName = e.Activity
		}
		if e.Amount <= 0 {
			e.Amount = 1
		}
		return e, nil
	}
	if !(e.Amount > 0) {
		return e, fmt.Errorf("skipped %s event %s with amount %v", e.Kind, e.ID, e.Amount)
	}
	e.GainedScore = finiteOrZero(e.GainedScore)
	return e, nil
}

// clearUserData drops every event and each catalog snap provides. A catalog
// missing from snap keeps its current definitions.
func clearUserData(tx *sql.Tx, snap *model.Snapshot) error {
	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events for replace mode: %w", err)
	}
	for _, kind := range model.CatalogKinds {
		if len(snap.CatalogOf(kind)) == 0 {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM behaviors WHERE kind = ?`, string(kind)); err != nil {
			return fmt.Errorf("clear %s catalog for replace mode: %w", kind, err)
		}
	}
	return nil
}
