package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent posts",
	Long:  `List the most recent local post records of every status, newest first.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of posts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Posts.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println("No posts yet.")
		return nil
	}

	for _, p := range list {
		fmt.Printf("#%d  %-9s  %s  %s\n", p.ID, p.Status, p.CreatedAt.Local().Format("2006-01-02 15:04"), preview(p.Text, 60))
		if p.ThreadsMediaID.Valid {
			fmt.Printf("     media: %s\n", p.ThreadsMediaID.String)
		}
		if p.ErrorMessage.Valid {
			fmt.Printf("     error: %s\n", p.ErrorMessage.String)
		}
	}
	return nil
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}
