package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/threados/internal/oauth"
)

const (
	demoUserID   = "1234567890"
	demoUsername = "demo_user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo account",
	Long: `Create a demo account with a mock token for local testing.
Remote calls made with it will fail.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.Store.GetAccountByThreadsUserID(ctx, demoUserID)
	if err == nil {
		fmt.Println("Demo user already exists.")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get account: %w", err)
	}

	account, err := a.OAuth.Save(ctx, oauth.Grant{
		ThreadsUserID: demoUserID,
		Username:      demoUsername,
		AccessToken:   "th_mock_token_12345",
		Scopes:        "threads_basic,threads_content_publish",
		ExpiresAt:     time.Now().Add(60 * 24 * time.Hour),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Seeded demo account: %s (ID: %d)\n", account.Username, account.ID)
	return nil
}
