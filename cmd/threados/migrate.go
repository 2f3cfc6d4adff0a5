package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/db"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending schema migrations to the ThreadOS database and print
the versions that were applied.

Examples:
  threados migrate           # Apply pending migrations
  threados migrate --status  # List applied versions without changing anything`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "List applied versions without migrating")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	before, err := store.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	if migrateStatus {
		fmt.Printf("Database: %s\n", cfg.DatabasePath)
		if len(before) == 0 {
			fmt.Println("No migrations applied.")
			return nil
		}
		for _, v := range before {
			fmt.Printf("  applied  %s\n", v)
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	after, err := store.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(before))
	for _, v := range before {
		seen[v] = true
	}
	var applied []string
	for _, v := range after {
		if !seen[v] {
			applied = append(applied, v)
		}
	}
	slog.Info("schema up to date",
		"path", cfg.DatabasePath,
		"applied", len(applied),
		"total", len(after),
	)
	if len(applied) == 0 {
		fmt.Println("Schema already up to date.")
		return nil
	}
	for _, v := range applied {
		fmt.Printf("Applied %s\n", v)
	}
	return nil
}
