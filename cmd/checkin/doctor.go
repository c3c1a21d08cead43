package checkin

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	doctorFix  bool
	doctorJSON bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, service.DoctorOptions{Fix: doctorFix})
			if err != nil {
				return err
			}
			// Re-check after fixes so exit status reflects final state.
			final := report
			if doctorFix {
				if final, err = service.RunDoctor(sqldb, service.DoctorOptions{}); err != nil {
					return err
				}
			}
			if doctorJSON {
				if err := printJSON(cmd, report, "doctor report"); err != nil {
					return err
				}
				return doctorVerdict(final)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date key mismatches: %d\n", report.DateKeyMismatches)
			fmt.Fprintf(out, "Unknown categories: %d\n", report.UnknownCategories)
			fmt.Fprintf(out, "Non-positive amounts: %d\n", report.NonPositiveAmounts)
			fmt.Fprintf(out, "Invalid pleasure intensities: %d\n", report.InvalidIntensities)
			fmt.Fprintf(out, "Unreadable rows: %d\n", report.UnreadableRows)
			if doctorFix {
				fmt.Fprintf(out, "Fixed date keys: %d\n", report.FixedDateKeys)
			}
			if final.Healthy() {
				fmt.Fprintln(out, "No issues found")
			}
			return doctorVerdict(final)
		})
	},
}

func doctorVerdict(report service.DoctorReport) error {
	if !report.Healthy() {
		return fmt.Errorf("doctor found integrity issues")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rewrite date keys from stored timestamps")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output the report as JSON")
}
