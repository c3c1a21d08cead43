package checkin

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	eventsKind  string
	eventsFrom  string
	eventsTo    string
	eventsLimit int
	eventsJSON  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List and delete logged events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.EventFilter{FromDate: eventsFrom, ToDate: eventsTo, Limit: eventsLimit}
		if eventsKind != "" {
			kind, err := model.ParseKind(eventsKind)
			if err != nil {
				return err
			}
			filter.Kind = kind
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListEvents(sqldb, filter)
			if err != nil {
				return err
			}
			if eventsJSON {
				return printJSON(cmd, items, "events")
			}
			rows := make([][]string, 0, len(items))
			for _, e := range items {
				amount := num(e.Amount) + e.Unit
				if e.Kind == model.KindPleasure {
					amount = "intensity " + strconv.Itoa(e.Intensity)
				}
				rows = append(rows, []string{
					e.ID,
					e.DateKey,
					e.Timestamp.Format("15:04"),
					string(e.Kind),
					e.Category,
					e.SubtypeName,
					amount,
					num(e.GainedScore),
				})
			}
			writeRows(cmd.OutOrStdout(), "ID\tDATE\tTIME\tKIND\tCATEGORY\tNAME\tAMOUNT\tSCORE", rows)
			return nil
		})
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			if err := service.DeleteEvent(sqldb, args[0], env.now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd, eventsDeleteCmd)

	eventsListCmd.Flags().StringVar(&eventsKind, "kind", "", "beauty, ugly, wellness, or pleasure (default all)")
	eventsListCmd.Flags().StringVar(&eventsFrom, "from", "", "First date YYYY-MM-DD")
	eventsListCmd.Flags().StringVar(&eventsTo, "to", "", "Last date YYYY-MM-DD")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Maximum rows (0 for all)")
	eventsListCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output as JSON")
}
