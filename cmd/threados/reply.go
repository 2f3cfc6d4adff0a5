package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/threads"
)

var replyAuthor string

var replyCmd = &cobra.Command{
	Use:   "reply <parent_media_id> <text>",
	Short: "Reply to a post",
	Long: `Publish a reply under an existing Threads post and record it locally.

Examples:
  threados reply 18012345678901234 "Thanks for reading!"
  threados reply --author bob 18012345678901234 "Good point"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runReply,
}

func init() {
	replyCmd.Flags().StringVar(&replyAuthor, "author", "", "Label of the person being replied to")
	rootCmd.AddCommand(replyCmd)
}

func runReply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	parentID := args[0]
	text := strings.Join(args[1:], " ")

	if err := threads.ValidateText(text); err != nil {
		return fmt.Errorf("validate text: %w", err)
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

	reply, err := a.Posts.Reply(ctx, client, cred.UserID, parentID, text, replyAuthor)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}

	fmt.Printf("Replied successfully!\nReply ID: %s\n", reply.ThreadsReplyID.String)
	return nil
}
