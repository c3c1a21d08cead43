package checkin

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/score"
	"github.com/saadjs/checkin-cli/internal/service"
)

const trendBarWidth = 30

var (
	overviewPeriod string
	overviewJSON   bool
	historyPeriod  string
	historyJSON    bool
	trendDays      int
	trendJSON      bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show totals and goal progress for today, this week, and this month",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := evaluationNow()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, err := service.LoadSnapshot(sqldb)
			if err != nil {
				return err
			}
			views := score.BuildOverview(snap, now).Periods
			if overviewPeriod != "" {
				period, err := score.ParsePeriod(overviewPeriod)
				if err != nil {
					return err
				}
				views = []score.PeriodView{score.BuildPeriod(snap, now, period)}
			}
			if overviewJSON {
				if len(views) == 1 {
					return printJSON(cmd, views[0], "overview")
				}
				return printJSON(cmd, score.Overview{Today: score.ToDateKey(now), Periods: views}, "overview")
			}
			for i, v := range views {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printPeriod(cmd.OutOrStdout(), v)
			}
			return nil
		})
	},
}

func printPeriod(out io.Writer, v score.PeriodView) {
	w := v.Window
	if w.StartKey == w.EndKey {
		fmt.Fprintf(out, "%s (%s)\n", w.Label, w.EndKey)
	} else {
		fmt.Fprintf(out, "%s (%s..%s, day %d of %d)\n", w.Label, w.StartKey, w.EndKey, w.Elapsed, w.Days)
	}
	for _, card := range []score.MetricCard{v.Beauty, v.Ugly, v.Wellness, v.Pleasure} {
		fmt.Fprintf(out, "  %-9s %s\n", card.Label, cardLine(card))
		if card.Summary != "" {
			fmt.Fprintf(out, "            %s\n", card.Summary)
		}
	}
	h := v.Health
	state := "below goal"
	if h.Achieved {
		state = "achieved"
	}
	fmt.Fprintf(out, "  %-9s %s / %s (%s, %s)\n", "Health", num(h.Value), num(h.Goal), percent(h.FillPercent), state)
}

func cardLine(card score.MetricCard) string {
	switch {
	case card.Floor != nil:
		f := card.Floor
		line := fmt.Sprintf("%s / %s (%s)", num(card.Total), num(card.Goal), percent(f.CompletionPercent))
		if f.Achieved {
			line += " achieved"
		} else {
			line += fmt.Sprintf(" %s to go", num(f.Remaining))
		}
		if f.HasPace {
			line += fmt.Sprintf(", pace %s", percent(f.PacePercent))
		}
		return line
	case card.Ceiling != nil:
		state := "within limit"
		if !card.Ceiling.WithinLimit {
			state = "over limit"
		}
		return fmt.Sprintf("%s / %s limit (%s)", num(card.Total), num(card.Goal), state)
	}
	return num(card.Total)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show one row per day that has events",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := evaluationNow()
		if err != nil {
			return err
		}
		period, err := score.ParsePeriod(historyPeriod)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, err := service.LoadSnapshot(sqldb)
			if err != nil {
				return err
			}
			rows, err := score.History(snap, now, period)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd, rows, "history")
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No events in this period")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				status, beauty := "-", "-"
				if r.Beauty != nil {
					status = string(r.Beauty.Status)
					parts := make([]string, 0, len(r.Beauty.Categories))
					for _, c := range r.Beauty.Categories {
						parts = append(parts, c.Category+": "+c.Summary)
					}
					beauty = strings.Join(parts, "; ")
				}
				table = append(table, []string{
					r.DateKey,
					num(r.BeautyTotal),
					status,
					beauty,
					emptyDash(r.UglySummary),
					emptyDash(r.WellnessSummary),
					num(r.Health.Value),
				})
			}
			writeRows(out, "DATE\tBEAUTY\tSTATUS\tEXERCISE\tUGLY\tWELLNESS\tHEALTH", table)
			return nil
		})
	},
}

func emptyDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show daily beauty and pleasure totals for the last 7, 14, or 30 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := evaluationNow()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, err := service.LoadSnapshot(sqldb)
			if err != nil {
				return err
			}
			series, err := score.Trend(snap, now, trendDays)
			if err != nil {
				return err
			}
			if trendJSON {
				return printJSON(cmd, series, "trend")
			}
			out := cmd.OutOrStdout()
			for _, p := range series.Points {
				fmt.Fprintf(out, "%-6s B %-*s %s\n", p.Label, trendBarWidth, bar(p.Beauty, series.MaxAll, "#"), num(p.Beauty))
				fmt.Fprintf(out, "%-6s P %-*s %s\n", "", trendBarWidth, bar(p.Pleasure, series.MaxAll, "*"), num(p.Pleasure))
			}
			fmt.Fprintf(out, "max beauty %s | max pleasure %s\n", num(series.MaxBeauty), num(series.MaxPleasure))
			return nil
		})
	},
}

func bar(v, maxValue float64, mark string) string {
	if maxValue <= 0 || v <= 0 {
		return ""
	}
	n := int(math.Round(v / maxValue * trendBarWidth))
	if n < 1 {
		n = 1
	}
	return strings.Repeat(mark, n)
}

func init() {
	rootCmd.AddCommand(overviewCmd, historyCmd, trendCmd)

	overviewCmd.Flags().StringVar(&overviewPeriod, "period", "", "today, week, or month (default all three)")
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "Output as JSON")
	historyCmd.Flags().StringVar(&historyPeriod, "period", "week", "today, week, or month")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	trendCmd.Flags().IntVar(&trendDays, "days", 7, "Range: 7, 14, or 30")
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "Output as JSON")
}
