package checkin

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

var initWriteConfig bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local checkin database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		err = withDB(func(sqldb *sql.DB) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized checkin database at %s\n", path)
			for _, kind := range model.CatalogKinds {
				defs, err := service.ListBehaviors(sqldb, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s catalog: %d behaviors\n", kind, len(defs))
			}
			return nil
		})
		if err != nil || !initWriteConfig {
			return err
		}

		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", cfgPath)
			return nil
		}
		if err := app.WriteConfig(cfgPath, app.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "Also write a default config file if none exists")
}
