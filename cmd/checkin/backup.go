package checkin

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/checkin-cli/internal/app"
	"github.com/saadjs/checkin-cli/internal/service"
)

var (
	backupOut    string
	backupDir    string
	backupJSON   bool
	restoreFile  string
	restoreForce bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, and restore database backups",
}

// backupTarget resolves the database path and the directory backups live in.
func backupTarget() (string, string, error) {
	db, err := resolveDBPath()
	if err != nil {
		return "", "", err
	}
	if backupDir != "" {
		return db, backupDir, nil
	}
	return db, app.BackupDir(db), nil
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy the database with a sha256 checksum",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, dir, err := backupTarget()
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(dir, service.BackupFileName(time.Now()))
		}
		info, err := service.CreateBackup(db, out)
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd, info, "backup")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s (%d bytes)\n", info.Path, info.SizeBytes)
		fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := backupTarget()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd, items, "backups")
		}
		if len(items) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", dir)
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{it.Path, strconv.FormatInt(it.SizeBytes, 10), it.CreatedAt.Format(time.RFC3339), it.Checksum})
		}
		writeRows(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM", rows)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the database with a backup; --force saves the current one first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		db, dir, err := backupTarget()
		if err != nil {
			return err
		}
		res, err := service.RestoreBackup(restoreFile, db, service.RestoreOptions{
			Force:     restoreForce,
			SafetyDir: dir,
			Now:       time.Now(),
		})
		if err != nil {
			return err
		}
		if res.Previous != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved previous database to %s\n", res.Previous.Path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", res.Restored.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ next to the database)")
	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path (default: timestamped file in --dir)")
	backupCreateCmd.Flags().BoolVar(&backupJSON, "json", false, "Output as JSON")
	backupListCmd.Flags().BoolVar(&backupJSON, "json", false, "Output as JSON")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite the existing database")
}
