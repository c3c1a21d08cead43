package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

type BehaviorInput struct {
	Kind        model.Kind
	Category    string
	Name        string
	Unit        string
	PerUnitRate float64
	Now         time.Time
}

// UpdateBehaviorInput changes only the fields that are set.
type UpdateBehaviorInput struct {
	Kind        model.Kind
	ID          int64
	Category    *string
	Name        *string
	Unit        *string
	PerUnitRate *float64
	Now         time.Time
}

func validateCatalogKind(kind model.Kind) error {
	if !kind.HasCatalog() {
		return fmt.Errorf("kind %q has no behavior catalog (use beauty, ugly, or wellness)", kind)
	}
	return nil
}

func validateBehaviorCategory(kind model.Kind, category string) error {
	if !kind.ValidCategory(category) {
		return fmt.Errorf("invalid %s category %q (use %s)", kind, category, strings.Join(kind.Categories(), ", "))
	}
	return nil
}

func ListBehaviors(db *sql.DB, kind model.Kind) ([]model.BehaviorDefinition, error) {
	if err := validateCatalogKind(kind); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT id, category, name, unit, per_unit_rate FROM behaviors WHERE kind = ? ORDER BY id ASC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s behaviors: %w", kind, err)
	}
	defer rows.Close()

	items := make([]model.BehaviorDefinition, 0)
	for rows.Next() {
		b := model.BehaviorDefinition{Kind: kind}
		if err := rows.Scan(&b.ID, &b.Category, &b.Name, &b.Unit, &b.PerUnitRate); err != nil {
			return nil, fmt.Errorf("scan behavior: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behaviors: %w", err)
	}
	return items, nil
}

func GetBehavior(db *sql.DB, kind model.Kind, id int64) (model.BehaviorDefinition, error) {
	if err := validateCatalogKind(kind); err != nil {
		return model.BehaviorDefinition{}, err
	}
	if id <= 0 {
		return model.BehaviorDefinition{}, fmt.Errorf("behavior id must be > 0")
	}
	b := model.BehaviorDefinition{Kind: kind}
	err := db.QueryRow(`SELECT id, category, name, unit, per_unit_rate FROM behaviors WHERE kind = ? AND id = ?`, string(kind), id).
		Scan(&b.ID, &b.Category, &b.Name, &b.Unit, &b.PerUnitRate)
	if err == sql.ErrNoRows {
		return model.BehaviorDefinition{}, fmt.Errorf("%s behavior %d %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("get %s behavior %d: %w", kind, id, err)
	}
	return b, nil
}

// AddBehavior appends a definition with id one past the catalog's largest.
func AddBehavior(db *sql.DB, in BehaviorInput) (model.BehaviorDefinition, error) {
	if err := validateCatalogKind(in.Kind); err != nil {
		return model.BehaviorDefinition{}, err
	}
	b := model.BehaviorDefinition{
		Kind:        in.Kind,
		Category:    normalizeName(in.Category),
		Name:        strings.TrimSpace(in.Name),
		Unit:        strings.TrimSpace(in.Unit),
		PerUnitRate: in.PerUnitRate,
	}
	if err := validateBehaviorCategory(b.Kind, b.Category); err != nil {
		return model.BehaviorDefinition{}, err
	}
	if b.Name == "" {
		return model.BehaviorDefinition{}, fmt.Errorf("behavior name is required")
	}
	if err := validateFinite("per-unit rate", b.PerUnitRate); err != nil {
		return model.BehaviorDefinition{}, err
	}

	tx, err := db.Begin()
	if err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("begin add behavior tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM behaviors WHERE kind = ?`, string(b.Kind)).Scan(&b.ID); err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("next %s behavior id: %w", b.Kind, err)
	}
	if _, err := tx.Exec(`
INSERT INTO behaviors(kind, id, category, name, unit, per_unit_rate)
VALUES(?, ?, ?, ?, ?, ?)
`, string(b.Kind), b.ID, b.Category, b.Name, b.Unit, b.PerUnitRate); err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("add %s behavior %q: %w", b.Kind, b.Name, err)
	}
	if err := markChanged(tx, in.Now); err != nil {
		return model.BehaviorDefinition{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("commit add behavior tx: %w", err)
	}
	return b, nil
}

// UpdateBehavior edits a definition. Events already logged against it keep
// the name, unit, and score they were recorded with.
func UpdateBehavior(db *sql.DB, in UpdateBehaviorInput) (model.BehaviorDefinition, error) {
	b, err := GetBehavior(db, in.Kind, in.ID)
	if err != nil {
		return model.BehaviorDefinition{}, err
	}
	if in.Category != nil {
		b.Category = normalizeName(*in.Category)
		if err := validateBehaviorCategory(b.Kind, b.Category); err != nil {
			return model.BehaviorDefinition{}, err
		}
	}
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
		if b.Name == "" {
			return model.BehaviorDefinition{}, fmt.Errorf("behavior name is required")
		}
	}
	if in.Unit != nil {
		b.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.PerUnitRate != nil {
		if err := validateFinite("per-unit rate", *in.PerUnitRate); err != nil {
			return model.BehaviorDefinition{}, err
		}
		b.PerUnitRate = *in.PerUnitRate
	}

	res, err := db.Exec(`
UPDATE behaviors
SET category = ?, name = ?, unit = ?, per_unit_rate = ?, updated_at = CURRENT_TIMESTAMP
WHERE kind = ? AND id = ?
`, b.Category, b.Name, b.Unit, b.PerUnitRate, string(b.Kind), b.ID)
	if err != nil {
		return model.BehaviorDefinition{}, fmt.Errorf("update %s behavior %d: %w", b.Kind, b.ID, err)
	}
	if err := expectOneRow(res, fmt.Sprintf("%s behavior %d", b.Kind, b.ID)); err != nil {
		return model.BehaviorDefinition{}, err
	}
	if err := markChanged(db, in.Now); err != nil {
		return model.BehaviorDefinition{}, err
	}
	return b, nil
}

func RemoveBehavior(db *sql.DB, kind model.Kind, id int64, now time.Time) error {
	if err := validateCatalogKind(kind); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("behavior id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM behaviors WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("remove %s behavior %d: %w", kind, id, err)
	}
	if err := expectOneRow(res, fmt.Sprintf("%s behavior %d", kind, id)); err != nil {
		return err
	}
	return markChanged(db, now)
}
