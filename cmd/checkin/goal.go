package checkin

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/score"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	goalBeauty   float64
	goalUgly     float64
	goalWellness float64
	goalJSON     bool
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show or set daily goals",
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show daily goals and the goals they imply for each window",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := evaluationNow()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			g, err := service.GetGoalSettings(sqldb)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd, g, "goals")
			}
			printGoals(cmd, g, score.Windows(now))
			return nil
		})
	},
}

func printGoals(cmd *cobra.Command, g model.GoalSettings, windows []score.Window) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Daily beauty goal: %s\n", num(g.DailyBeautyFloor))
	fmt.Fprintf(out, "Daily ugly limit: %s\n", num(g.DailyUglyCeiling))
	fmt.Fprintf(out, "Daily wellness goal: %s\n", num(g.DailyWellnessFloor))
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			w.Label,
			fmt.Sprintf("%d", w.Days),
			num(score.ScaleGoal(g.DailyBeautyFloor, w)),
			num(score.ScaleGoal(g.DailyUglyCeiling, w)),
			num(score.ScaleGoal(g.DailyWellnessFloor, w)),
			num(score.HealthGoal(g, w)),
		})
	}
	writeRows(out, "WINDOW\tDAYS\tBEAUTY\tUGLY\tWELLNESS\tHEALTH", rows)
}

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily goals; unset flags keep their values",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.GoalSettingsUpdate{}
		if cmd.Flags().Changed("beauty") {
			in.DailyBeautyFloor = &goalBeauty
		}
		if cmd.Flags().Changed("ugly") {
			in.DailyUglyCeiling = &goalUgly
		}
		if cmd.Flags().Changed("wellness") {
			in.DailyWellnessFloor = &goalWellness
		}
		if in.DailyBeautyFloor == nil && in.DailyUglyCeiling == nil && in.DailyWellnessFloor == nil {
			return fmt.Errorf("set at least one of --beauty, --ugly, --wellness")
		}
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			in.Now = env.now
			g, err := service.SetGoalSettings(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goals: beauty %s | ugly limit %s | wellness %s\n", num(g.DailyBeautyFloor), num(g.DailyUglyCeiling), num(g.DailyWellnessFloor))
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalShowCmd, goalSetCmd)

	goalShowCmd.Flags().BoolVar(&goalJSON, "json", false, "Output as JSON")
	goalSetCmd.Flags().Float64Var(&goalBeauty, "beauty", 0, "Daily beauty goal (minimum)")
	goalSetCmd.Flags().Float64Var(&goalUgly, "ugly", 0, "Daily ugly limit (maximum)")
	goalSetCmd.Flags().Float64Var(&goalWellness, "wellness", 0, "Daily wellness goal (minimum)")
}
