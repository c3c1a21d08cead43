package checkin

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/notify"
	"github.com/saadjs/checkin-cli/internal/score"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	logBehaviorID   int64
	logAmount       float64
	logDate         string
	logCategory     string
	logActivity     string
	logIntensity    int
	logNote         string
	logJSON         bool
	desktopNotifier notify.Notifier = notify.Desktop{}
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a beauty, ugly, wellness, or pleasure event",
}

func newLogKindCmd(kind model.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logBehaviorID <= 0 {
				return fmt.Errorf("--id is required (see `checkin catalog list --kind %s`)", kind)
			}
			return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
				today := score.ToDateKey(env.now)
				before, err := service.DayTotal(sqldb, kind, today)
				if err != nil {
					return err
				}
				evt, err := service.LogEvent(sqldb, service.LogEventInput{
					Kind:       kind,
					BehaviorID: logBehaviorID,
					Amount:     logAmount,
					Date:       logDate,
					Now:        env.now,
				})
				if err != nil {
					return err
				}
				env.log.Debug("logged event", "kind", kind, "id", evt.ID, "gained", evt.GainedScore)
				if err := printLogged(cmd, evt); err != nil {
					return err
				}
				if evt.DateKey == today {
					if err := reportDayProgress(cmd, sqldb, env, kind, before); err != nil {
						return err
					}
				}
				pushAfterWrite(cmd, sqldb, env)
				return nil
			})
		},
	}
}

var logPleasureCmd = &cobra.Command{
	Use:   "pleasure",
	Short: "Log a pleasure moment with intensity 3, 6, or 10",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			evt, err := service.LogPleasure(sqldb, service.PleasureInput{
				Category:  logCategory,
				Activity:  logActivity,
				Intensity: logIntensity,
				Note:      logNote,
				Date:      logDate,
				Now:       env.now,
			})
			if err != nil {
				return err
			}
			if err := printLogged(cmd, evt); err != nil {
				return err
			}
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

func printLogged(cmd *cobra.Command, evt model.Event) error {
	if logJSON {
		return printJSON(cmd, evt, "event")
	}
	if evt.Kind == model.KindPleasure {
		fmt.Fprintf(cmd.OutOrStdout(), "Logged pleasure: %s (%s, intensity %d) on %s\n", evt.SubtypeName, evt.Category, evt.Intensity, evt.DateKey)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %s %s%s (+%s) on %s\n", evt.Kind, evt.SubtypeName, num(evt.Amount), evt.Unit, num(evt.GainedScore), evt.DateKey)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", evt.ID)
	return nil
}

// reportDayProgress prints today's total against the daily goal and sends a
// desktop notification when a floor goal was just reached.
func reportDayProgress(cmd *cobra.Command, sqldb *sql.DB, env runtimeEnv, kind model.Kind, before float64) error {
	if logJSON {
		return nil
	}
	after, err := service.DayTotal(sqldb, kind, score.ToDateKey(env.now))
	if err != nil {
		return err
	}
	settings, err := service.GetGoalSettings(sqldb)
	if err != nil {
		return err
	}
	m := score.MetricFor(kind)
	goal := m.DailyGoal(settings)
	switch m.Policy {
	case score.Ceiling:
		st := score.EvaluateCeiling(after, goal)
		state := "within limit"
		if !st.WithinLimit {
			state = "over limit"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Today %s: %s / %s (%s)\n", kind, num(after), num(goal), state)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Today %s: %s / %s (%s)\n", kind, num(after), num(goal), score.StatusFromDayTotal(after, goal))
		if env.cfg.Notify {
			sent, err := notify.GoalReached(desktopNotifier, kind, before, after, goal)
			if err != nil {
				env.log.Warn("goal notification failed", "error", err)
			} else if sent {
				env.log.Info("goal notification sent", "kind", kind)
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(logCmd)
	kindCmds := []*cobra.Command{
		newLogKindCmd(model.KindBeauty, "Log exercise from the beauty catalog"),
		newLogKindCmd(model.KindUgly, "Log a bad habit from the ugly catalog"),
		newLogKindCmd(model.KindWellness, "Log self-care from the wellness catalog"),
	}
	for _, c := range kindCmds {
		c.Flags().Int64Var(&logBehaviorID, "id", 0, "Catalog behavior id")
		c.Flags().Float64Var(&logAmount, "amount", 0, "Amount in the behavior's unit")
		c.Flags().StringVar(&logDate, "date", "", "Backdate to YYYY-MM-DD within the last 7 days")
		c.Flags().BoolVar(&logJSON, "json", false, "Output the event as JSON")
		_ = c.MarkFlagRequired("amount")
	}
	logCmd.AddCommand(kindCmds...)
	logCmd.AddCommand(logPleasureCmd)

	logPleasureCmd.Flags().StringVar(&logCategory, "category", "", "body-relax, sensory, mind, creative, blank, or other")
	logPleasureCmd.Flags().StringVar(&logActivity, "activity", "", "What you did")
	logPleasureCmd.Flags().IntVar(&logIntensity, "intensity", 0, "Intensity: 3, 6, or 10")
	logPleasureCmd.Flags().StringVar(&logNote, "note", "", "Optional note")
	logPleasureCmd.Flags().StringVar(&logDate, "date", "", "Backdate to YYYY-MM-DD within the last 7 days")
	logPleasureCmd.Flags().BoolVar(&logJSON, "json", false, "Output the event as JSON")
}
