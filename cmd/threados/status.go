package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account and post statistics",
	Long:  `Display the connected account and post counts by status.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.OAuth.Status(ctx)
	if err != nil {
		return err
	}

	counts, err := a.Posts.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Println("=== ThreadOS Status ===")
	fmt.Println()
	if st.Connected {
		fmt.Printf("Account:   @%s (%s)\n", *st.Username, *st.ThreadsUserID)
		if st.ExpiresAt != nil {
			fmt.Printf("Expires:   %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
	} else {
		fmt.Println("Account:   not connected")
	}
	fmt.Println()
	fmt.Println("Posts:")
	for _, s := range []string{db.PostStatusPending, db.PostStatusPublished, db.PostStatusFailed, db.PostStatusDeleted} {
		fmt.Printf("  %-10s %d\n", s, counts[s])
	}
	return nil
}
