package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [dest]",
	Short: "Back up the database",
	Long: `Write a consistent copy of the database. Without a destination the
copy goes to a timestamped file in a backups directory next to the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dest := ""
	if len(args) == 1 {
		dest = args[0]
	} else {
		name := fmt.Sprintf("threados_backup_%s.db", time.Now().Format("20060102_150405"))
		dest = filepath.Join(filepath.Dir(a.Config.DatabasePath), "backups", name)
	}

	if err := a.Store.Backup(ctx, dest); err != nil {
		return err
	}

	fmt.Printf("Backup created successfully: %s\n", dest)
	return nil
}
