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

// BackdateDays is how far back an event may be logged.
const BackdateDays = 7

type LogEventInput struct {
	Kind       model.Kind
	BehaviorID int64
	Amount     float64
	// Date backdates the event to a past day (YYYY-MM-DD). Empty means now.
	Date string
	Now  time.Time
}

type PleasureInput struct {
	Category  string
	Activity  string
	Intensity int
	Note      string
	Date      string
	Now       time.Time
}

type EventFilter struct {
	Kind     model.Kind
	FromDate string
	ToDate   string
	Limit    int
}

// LogEvent records one beauty, ugly, or wellness event. The behavior's name,
// unit, and rate are copied into the event so later catalog edits do not
// change history.
func LogEvent(db *sql.DB, in LogEventInput) (model.Event, error) {
	if !in.Kind.HasCatalog() {
		return model.Event{}, fmt.Errorf("kind %q has no behavior catalog", in.Kind)
	}
	if err := validateFinite("amount", in.Amount); err != nil {
		return model.Event{}, err
	}
	if in.Amount <= 0 {
		return model.Event{}, fmt.Errorf("amount must be > 0")
	}
	def, err := GetBehavior(db, in.Kind, in.BehaviorID)
	if err != nil {
		return model.Event{}, err
	}
	ts, err := ResolveTimestamp(nowOr(in.Now), in.Date)
	if err != nil {
		return model.Event{}, err
	}

	e := model.Event{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		Timestamp:   ts,
		DateKey:     score.ToDateKey(ts),
		Category:    def.Category,
		SubtypeID:   def.ID,
		SubtypeName: def.Name,
		Unit:        def.Unit,
		Amount:      in.Amount,
		GainedScore: score.ComputeGain(in.Amount, def.PerUnitRate),
	}
	if err := saveEvent(db, e, in.Now); err != nil {
		return model.Event{}, err
	}
	return e, nil
}

func LogPleasure(db *sql.DB, in PleasureInput) (model.Event, error) {
	category := normalizeName(in.Category)
	if !model.KindPleasure.ValidCategory(category) {
		return model.Event{}, fmt.Errorf("invalid pleasure category %q (use %s)", in.Category, strings.Join(model.KindPleasure.Categories(), ", "))
	}
	activity := strings.TrimSpace(in.Activity)
	if activity == "" {
		return model.Event{}, fmt.Errorf("activity is required")
	}
	gained := score.PleasureScore(in.Intensity)
	if gained == 0 {
		return model.Event{}, fmt.Errorf("intensity must be one of 3, 6, or 10")
	}
	ts, err := ResolveTimestamp(nowOr(in.Now), in.Date)
	if err != nil {
		return model.Event{}, err
	}

	e := model.Event{
		ID:          uuid.NewString(),
		Kind:        model.KindPleasure,
		Timestamp:   ts,
		DateKey:     score.ToDateKey(ts),
		Category:    category,
		SubtypeName: activity,
		Amount:      1,
		GainedScore: gained,
		Intensity:   in.Intensity,
		Activity:    activity,
		Note:        strings.TrimSpace(in.Note),
	}
	if err := saveEvent(db, e, in.Now); err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// ResolveTimestamp returns now when date is empty. Otherwise date must lie
// in [today-7, today-1] and the result is that day at now's clock time.
func ResolveTimestamp(now time.Time, date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return now, nil
	}
	day, err := score.FromDateKey(date, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	today := score.ToDateKey(now)
	earliest, err := score.AddDays(today, -BackdateDays)
	if err != nil {
		return time.Time{}, err
	}
	latest, err := score.AddDays(today, -1)
	if err != nil {
		return time.Time{}, err
	}
	if date < earliest || date > latest {
		return time.Time{}, fmt.Errorf("date %s is outside the backdating window %s..%s", date, earliest, latest)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), nil
}

func saveEvent(db *sql.DB, e model.Event, now time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin log event tx: %w", err)
	}
	if err := insertEvent(tx, e); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := markChanged(tx, now); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit log event tx: %w", err)
	}
	return nil
}

func insertEvent(db execer, e model.Event) error {
	_, err := db.Exec(`
INSERT INTO events(id, kind, occurred_at, date_key, category, subtype_id, subtype_name, unit, amount, gained_score, intensity, activity, note)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, string(e.Kind), e.Timestamp.Format(occurredAtLayout), e.DateKey, e.Category, e.SubtypeID, e.SubtypeName, e.Unit, e.Amount, e.GainedScore, e.Intensity, e.Activity, e.Note)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", e.Kind, err)
	}
	return nil
}

const eventColumns = `id, kind, occurred_at, date_key, category, subtype_id, subtype_name, unit, amount, gained_score, intensity, activity, note`

func scanEvent(rows *sql.Rows) (model.Event, error) {
	var e model.Event
	var kind, occurredAt string
	if err := rows.Scan(&e.ID, &kind, &occurredAt, &e.DateKey, &e.Category, &e.SubtypeID, &e.SubtypeName, &e.Unit, &e.Amount, &e.GainedScore, &e.Intensity, &e.Activity, &e.Note); err != nil {
		return model.Event{}, fmt.Errorf("scan event: %w", err)
	}
	e.Kind = model.Kind(kind)
	ts, err := time.Parse(occurredAtLayout, occurredAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("parse occurred_at for event %s: %w", e.ID, err)
	}
	e.Timestamp = ts
	return e, nil
}

// ListEvents returns matching events newest first.
func ListEvents(db *sql.DB, f EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := make([]any, 0)
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if strings.TrimSpace(f.FromDate) != "" {
		if !score.ValidDateKey(f.FromDate) {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", f.FromDate)
		}
		query += ` AND date_key >= ?`
		args = append(args, f.FromDate)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		if !score.ValidDateKey(f.ToDate) {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", f.ToDate)
		}
		query += ` AND date_key <= ?`
		args = append(args, f.ToDate)
	}
	query += ` ORDER BY date_key DESC, occurred_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func DeleteEvent(db *sql.DB, id string, now time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	res, err := db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if err := expectOneRow(res, "event "+id); err != nil {
		return err
	}
	return markChanged(db, now)
}

// DayTotal is the summed score of one kind on one calendar day.
func DayTotal(db *sql.DB, kind model.Kind, dateKey string) (float64, error) {
	events, err := ListEvents(db, EventFilter{Kind: kind, FromDate: dateKey, ToDate: dateKey})
	if err != nil {
		return 0, err
	}
	return score.WindowTotal(events), nil
}
