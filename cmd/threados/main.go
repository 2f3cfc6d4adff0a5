package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/app"
	"github.com/abdulachik/threados/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "threados",
	Short: "Publish to Threads and track post insights",
	Long: `ThreadOS publishes text posts and replies to a connected Threads
account, keeps a local history of every attempt, and captures
insights snapshots for published posts.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp loads and validates the configuration and opens the app.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	slog.Debug("connecting to database", "path", cfg.DatabasePath)
	return app.New(ctx, cfg)
}
