package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var insightsHistory int

var insightsCmd = &cobra.Command{
	Use:   "insights [media_id]",
	Short: "Capture insights snapshots",
	Long: `Capture an insights snapshot for one post, or run the refresh
cycle over recently published posts when no media id is given.

Examples:
  threados insights                          # Refresh recent published posts
  threados insights 18012345678901234        # Capture one snapshot
  threados insights --history 5 18012345678901234`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().IntVar(&insightsHistory, "history", 0, "Show the last N stored snapshots instead of capturing")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		res, err := a.Scheduler.RunNow(ctx)
		if err != nil {
			return fmt.Errorf("refresh insights: %w", err)
		}
		fmt.Printf("Checked %d posts, captured %d snapshots, %d failed\n", res.Checked, res.Captured, res.Failed)
		return nil
	}

	mediaID := args[0]

	if insightsHistory > 0 {
		snapshots, err := a.Insights.History(ctx, mediaID, insightsHistory)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots stored.")
			return nil
		}
		fmt.Printf("%-20s %8s %8s %8s %8s %8s\n", "CAPTURED", "VIEWS", "LIKES", "REPLIES", "REPOSTS", "QUOTES")
		for _, s := range snapshots {
			fmt.Printf("%-20s %8d %8d %8d %8d %8d\n",
				s.CapturedAt.Local().Format("2006-01-02 15:04"), s.Views, s.Likes, s.Replies, s.Reposts, s.Quotes)
		}
		return nil
	}

	_, client, err := a.Client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := a.Insights.Refresh(ctx, client, mediaID)
	if err != nil {
		return fmt.Errorf("capture insights: %w", err)
	}

	fmt.Printf("=== Insights for %s ===\n", mediaID)
	fmt.Printf("Views:   %d\n", s.Views)
	fmt.Printf("Likes:   %d\n", s.Likes)
	fmt.Printf("Replies: %d\n", s.Replies)
	fmt.Printf("Reposts: %d\n", s.Reposts)
	fmt.Printf("Quotes:  %d\n", s.Quotes)
	return nil
}
