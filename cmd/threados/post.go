package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/threads"
)

var (
	postDryRun   bool
	postTruncate bool
)

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a text post",
	Long: `Publish a text post to the connected Threads account and record
the outcome locally.

Examples:
  threados post "Hello, Threads"
  threados post --dry-run "Hello, Threads"  # Validate without posting
  threados post --truncate "$(cat long.txt)" # Shorten to the length limit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Validate the text without posting")
	postCmd.Flags().BoolVar(&postTruncate, "truncate", false, "Shorten text over the length limit instead of failing")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.Join(args, " ")
	if postTruncate {
		text = threads.Truncate(text)
	}

	if err := threads.ValidateText(text); err != nil {
		return fmt.Errorf("validate text: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Post Content ===")
	fmt.Println()
	fmt.Println(text)
	fmt.Println()

	if postDryRun {
		fmt.Println("=== DRY RUN - Not posting ===")
		return nil
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cred, client, err := a.Client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	post, err := a.Posts.Publish(ctx, client, cred.UserID, text)
	if err != nil {
		return fmt.Errorf("publish post: %w", err)
	}

	if post.Status == db.PostStatusFailed {
		return fmt.Errorf("post %d failed: %s", post.ID, post.ErrorMessage.String)
	}

	fmt.Printf("Posted successfully!\nPost: %d\nMedia ID: %s\n", post.ID, post.ThreadsMediaID.String)
	return nil
}
