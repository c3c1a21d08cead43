package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/checkin-cli/internal/model"
)

// GoalSettingsUpdate sets only the non-nil daily goals.
type GoalSettingsUpdate struct {
	DailyBeautyFloor   *float64
	DailyUglyCeiling   *float64
	DailyWellnessFloor *float64
	Now                time.Time
}

func GetGoalSettings(db *sql.DB) (model.GoalSettings, error) {
	var g model.GoalSettings
	err := db.QueryRow(`
SELECT daily_beauty_floor, daily_ugly_ceiling, daily_wellness_floor
FROM goal_settings
WHERE id = 1
`).Scan(&g.DailyBeautyFloor, &g.DailyUglyCeiling, &g.DailyWellnessFloor)
	if err == sql.ErrNoRows {
		return model.DefaultGoalSettings(), nil
	}
	if err != nil {
		return model.GoalSettings{}, fmt.Errorf("get goal settings: %w", err)
	}
	return g, nil
}

// SetGoalSettings coerces non-finite input to 0 and rejects negative goals.
func SetGoalSettings(db *sql.DB, in GoalSettingsUpdate) (model.GoalSettings, error) {
	g, err := GetGoalSettings(db)
	if err != nil {
		return model.GoalSettings{}, err
	}
	apply := func(name string, src *float64, dst *float64) error {
		if src == nil {
			return nil
		}
		v := finiteOrZero(*src)
		if err := validateNonNegativeFloat(name, v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
	if err := apply("daily beauty goal", in.DailyBeautyFloor, &g.DailyBeautyFloor); err != nil {
		return model.GoalSettings{}, err
	}
	if err := apply("daily ugly limit", in.DailyUglyCeiling, &g.DailyUglyCeiling); err != nil {
		return model.GoalSettings{}, err
	}
	if err := apply("daily wellness goal", in.DailyWellnessFloor, &g.DailyWellnessFloor); err != nil {
		return model.GoalSettings{}, err
	}

	if err := writeGoalSettings(db, g); err != nil {
		return model.GoalSettings{}, err
	}
	if err := markChanged(db, in.Now); err != nil {
		return model.GoalSettings{}, err
	}
	return g, nil
}

func writeGoalSettings(db execer, g model.GoalSettings) error {
	_, err := db.Exec(`
INSERT INTO goal_settings(id, daily_beauty_floor, daily_ugly_ceiling, daily_wellness_floor, updated_at)
VALUES(1, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  daily_beauty_floor=excluded.daily_beauty_floor,
  daily_ugly_ceiling=excluded.daily_ugly_ceiling,
  daily_wellness_floor=excluded.daily_wellness_floor,
  updated_at=excluded.updated_at
`, g.DailyBeautyFloor, g.DailyUglyCeiling, g.DailyWellnessFloor)
	if err != nil {
		return fmt.Errorf("set goal settings: %w", err)
	}
	return nil
}
