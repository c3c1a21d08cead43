package checkin

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	catalogKind     string
	catalogID       int64
	catalogCategory string
	catalogName     string
	catalogUnit     string
	catalogRate     float64
	catalogJSON     bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the beauty, ugly, and wellness behavior catalogs",
}

func catalogKindFlag() (model.Kind, error) {
	kind, err := model.ParseKind(catalogKind)
	if err != nil {
		return "", err
	}
	if !kind.HasCatalog() {
		return "", fmt.Errorf("%s has no catalog (use beauty, ugly, or wellness)", kind)
	}
	return kind, nil
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog behaviors",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := model.CatalogKinds
		if catalogKind != "" {
			kind, err := catalogKindFlag()
			if err != nil {
				return err
			}
			kinds = []model.Kind{kind}
		}
		return withDB(func(sqldb *sql.DB) error {
			all := make([]model.BehaviorDefinition, 0)
			for _, kind := range kinds {
				defs, err := service.ListBehaviors(sqldb, kind)
				if err != nil {
					return err
				}
				all = append(all, defs...)
			}
			if catalogJSON {
				return printJSON(cmd, all, "catalog")
			}
			rows := make([][]string, 0, len(all))
			for _, d := range all {
				rows = append(rows, []string{
					string(d.Kind),
					strconv.FormatInt(d.ID, 10),
					d.Category,
					d.Name,
					d.Unit,
					num(d.PerUnitRate),
				})
			}
			writeRows(cmd.OutOrStdout(), "KIND\tID\tCATEGORY\tNAME\tUNIT\tRATE", rows)
			return nil
		})
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a behavior",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalogKindFlag()
		if err != nil {
			return err
		}
		if strings.TrimSpace(catalogName) == "" {
			return fmt.Errorf("--name is required")
		}
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			def, err := service.AddBehavior(sqldb, service.BehaviorInput{
				Kind:        kind,
				Category:    catalogCategory,
				Name:        catalogName,
				Unit:        catalogUnit,
				PerUnitRate: catalogRate,
				Now:         env.now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s behavior %d: %s (%s, %s per %s)\n", kind, def.ID, def.Name, def.Category, num(def.PerUnitRate), def.Unit)
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

var catalogEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a behavior; logged events keep the old values",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalogKindFlag()
		if err != nil {
			return err
		}
		if catalogID <= 0 {
			return fmt.Errorf("--id is required")
		}
		in := service.UpdateBehaviorInput{Kind: kind, ID: catalogID}
		if cmd.Flags().Changed("category") {
			in.Category = &catalogCategory
		}
		if cmd.Flags().Changed("name") {
			in.Name = &catalogName
		}
		if cmd.Flags().Changed("unit") {
			in.Unit = &catalogUnit
		}
		if cmd.Flags().Changed("rate") {
			in.PerUnitRate = &catalogRate
		}
		if in.Category == nil && in.Name == nil && in.Unit == nil && in.PerUnitRate == nil {
			return fmt.Errorf("set at least one of --category, --name, --unit, --rate")
		}
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			in.Now = env.now
			def, err := service.UpdateBehavior(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s behavior %d: %s (%s, %s per %s)\n", kind, def.ID, def.Name, def.Category, num(def.PerUnitRate), def.Unit)
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a behavior; logged events are kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalogKindFlag()
		if err != nil {
			return err
		}
		if catalogID <= 0 {
			return fmt.Errorf("--id is required")
		}
		return withEnvDB(func(sqldb *sql.DB, env runtimeEnv) error {
			if err := service.RemoveBehavior(sqldb, kind, catalogID, env.now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s behavior %d\n", kind, catalogID)
			pushAfterWrite(cmd, sqldb, env)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogAddCmd, catalogEditCmd, catalogRemoveCmd)

	catalogListCmd.Flags().StringVar(&catalogKind, "kind", "", "beauty, ugly, or wellness (default all)")
	catalogListCmd.Flags().BoolVar(&catalogJSON, "json", false, "Output as JSON")
	for _, c := range []*cobra.Command{catalogAddCmd, catalogEditCmd, catalogRemoveCmd} {
		c.Flags().StringVar(&catalogKind, "kind", "", "beauty, ugly, or wellness")
		_ = c.MarkFlagRequired("kind")
	}
	for _, c := range []*cobra.Command{catalogEditCmd, catalogRemoveCmd} {
		c.Flags().Int64Var(&catalogID, "id", 0, "Behavior id")
	}
	for _, c := range []*cobra.Command{catalogAddCmd, catalogEditCmd} {
		c.Flags().StringVar(&catalogCategory, "category", "", "Category (beauty: strength|cardio, ugly: body|mind, wellness: supplement|body-relax|mind-relax)")
		c.Flags().StringVar(&catalogName, "name", "", "Display name")
		c.Flags().StringVar(&catalogUnit, "unit", "", "Unit of amount, e.g. reps or min")
		c.Flags().Float64Var(&catalogRate, "rate", 0, "Score per unit")
	}
}
