package checkin

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	nowFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "checkin",
	Short: "checkin scores your daily habits from the terminal",
	Long: "checkin is a local-first habit tracker. Log beauty (exercise), ugly (bad habits), wellness, and pleasure events,\n" +
		"then see daily, weekly, and monthly totals against your goals and a combined health value.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir/checkin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Evaluate as of this instant (RFC3339 or YYYY-MM-DD)")
}
