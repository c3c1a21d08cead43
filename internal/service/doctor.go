package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
)

// DoctorReport counts rows the engine would score incorrectly.
type DoctorReport struct {
	DateKeyMismatches  int `json:"date_key_mismatches"`
	UnknownCategories  int `json:"unknown_categories"`
	NonPositiveAmounts int `json:"non_positive_amounts"`
	InvalidIntensities int `json:"invalid_intensities"`
	UnreadableRows     int `json:"unreadable_rows"`
	FixedDateKeys      int `json:"fixed_date_keys,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.DateKeyMismatches == 0 && r.UnknownCategories == 0 && r.NonPositiveAmounts == 0 && r.InvalidIntensities == 0 && r.UnreadableRows == 0
}

// DoctorOptions controls RunDoctor. Location is the zone whose calendar day
// a date key names; nil means time.Local.
type DoctorOptions struct {
	Fix      bool
	Location *time.Location
}

// RunDoctor checks every stored event. With Fix, date keys that disagree
// with the local calendar day of their timestamp are rewritten.
func RunDoctor(db *sql.DB, opts DoctorOptions) (DoctorReport, error) {
	report := DoctorReport{}
	rows, err := db.Query(`SELECT id, kind, occurred_at, date_key, category, amount, intensity FROM events`)
	if err != nil {
		return report, fmt.Errorf("doctor event query: %w", err)
	}
	type keyFix struct{ id, dateKey string }
	fixes := make([]keyFix, 0)
	for rows.Next() {
		var id, kind, occurredAt, dateKey, category string
		var amount float64
		var intensity int
		if err := rows.Scan(&id, &kind, &occurredAt, &dateKey, &category, &amount, &intensity); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor event scan: %w", err)
		}
		ts, err := time.Parse(occurredAtLayout, occurredAt)
		if err != nil {
			report.UnreadableRows++
			continue
		}
		if want := score.LocalDateKey(ts, opts.Location); want != dateKey {
			report.DateKeyMismatches++
			fixes = append(fixes, keyFix{id: id, dateKey: want})
		}
		k := model.Kind(kind)
		if !k.ValidCategory(category) {
			report.UnknownCategories++
		}
		if k == model.KindPleasure {
			if score.PleasureScore(intensity) == 0 {
				report.InvalidIntensities++
			}
		} else if amount <= 0 {
			report.NonPositiveAmounts++
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor event iterate: %w", err)
	}
	_ = rows.Close()

	if opts.Fix && len(fixes) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, f := range fixes {
			if _, err := tx.Exec(`UPDATE events SET date_key = ? WHERE id = ?`, f.dateKey, f.id); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix date key for event %s: %w", f.id, err)
			}
			report.FixedDateKeys++
		}
		if err := markChanged(tx, time.Time{}); err != nil {
			_ = tx.Rollback()
			return report, err
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}

	return report, nil
}
