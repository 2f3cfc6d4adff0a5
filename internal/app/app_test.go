package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/oauth"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "app.db")
	cfg.NotifyWebhookURL = "http://hooks.test/notify"

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.API())
	status, ok := a.Health.Status("database")
	require.True(t, ok)
	assert.True(t, status.Healthy)

	_, _, err = a.Client(ctx)
	assert.ErrorIs(t, err, oauth.ErrNotConnected)

	_, err = a.OAuth.Save(ctx, oauth.Grant{ThreadsUserID: "1", Username: "demo", AccessToken: "tok"})
	require.NoError(t, err)

	cred, client, err := a.Client(ctx)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "demo", cred.Username)
}
