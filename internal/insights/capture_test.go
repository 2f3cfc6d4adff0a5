package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/threads"
)

func newTestCapturer(t *testing.T) (*Capturer, *db.Store) {
	t.Helper()
	ctx := context.Background()

	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() {
		store.Close()
	})

	c := NewCapturer(store)
	clock := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return c, store
}

func metric(name, values string) threads.Metric {
	return threads.Metric{Name: name, Values: json.RawMessage(values)}
}

func TestCapturer_Capture(t *testing.T) {
	ctx := context.Background()

	t.Run("single metric defaults the rest to zero", func(t *testing.T) {
		c, _ := newTestCapturer(t)

		snap, err := c.Capture(ctx, "media-1", []threads.Metric{
			metric("likes", `[{"value":7}]`),
		})
		require.NoError(t, err)

		assert.Equal(t, "media-1", snap.ThreadsMediaID)
		assert.Equal(t, int64(7), snap.Likes)
		assert.Zero(t, snap.Views)
		assert.Zero(t, snap.Replies)
		assert.Zero(t, snap.Reposts)
		assert.Zero(t, snap.Quotes)
	})

	t.Run("all metrics and unknown names", func(t *testing.T) {
		c, _ := newTestCapturer(t)

		snap, err := c.Capture(ctx, "media-1", []threads.Metric{
			metric("views", `[{"value":1200}]`),
			metric("likes", `[{"value":40}]`),
			metric("replies", `[{"value":3}]`),
			metric("reposts", `[{"value":2}]`),
			metric("quotes", `[{"value":1}]`),
			metric("shares", `[]`),
			metric("followers", `"not a list"`),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1200), snap.Views)
		assert.Equal(t, int64(40), snap.Likes)
		assert.Equal(t, int64(3), snap.Replies)
		assert.Equal(t, int64(2), snap.Reposts)
		assert.Equal(t, int64(1), snap.Quotes)
	})

	t.Run("fractional and exponent values", func(t *testing.T) {
		c, _ := newTestCapturer(t)

		snap, err := c.Capture(ctx, "media-1", []threads.Metric{
			metric("views", `[{"value":1.5e3}]`),
			metric("likes", `[{"value":12.9}]`),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1500), snap.Views)
		assert.Equal(t, int64(12), snap.Likes)
	})

	t.Run("empty metric list", func(t *testing.T) {
		c, _ := newTestCapturer(t)

		snap, err := c.Capture(ctx, "media-1", nil)
		require.NoError(t, err)
		assert.Zero(t, snap.Views+snap.Likes+snap.Replies+snap.Reposts+snap.Quotes)
	})
}

func TestCapturer_Capture_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		values string
	}{
		{"empty values", `[]`},
		{"not a list", `{"value":3}`},
		{"non numeric", `[{"value":"many"}]`},
		{"missing value", `[{}]`},
		{"null values", `null`},
		{"too large", `[{"value":1e20}]`},
		{"just past int64", `[{"value":9223372036854775808}]`},
		{"overflows float", `[{"value":1e400}]`},
		{"negative", `[{"value":-5}]`},
		{"negative float", `[{"value":-2.5}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := newTestCapturer(t)
			ctx := context.Background()

			_, err := c.Capture(ctx, "media-1", []threads.Metric{
				metric("likes", `[{"value":7}]`),
				metric("views", tt.values),
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedMetric))
			assert.Contains(t, err.Error(), `"views"`)

			snaps, err := store.ListInsightsSnapshots(ctx, db.ListInsightsSnapshotsParams{ThreadsMediaID: "media-1", Limit: 10})
			require.NoError(t, err)
			assert.Empty(t, snaps)
		})
	}
}

func TestCapturer_Capture_AppendsSnapshots(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCapturer(t)

	first, err := c.Capture(ctx, "media-1", []threads.Metric{metric("likes", `[{"value":1}]`)})
	require.NoError(t, err)
	second, err := c.Capture(ctx, "media-1", []threads.Metric{metric("likes", `[{"value":5}]`)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := c.History(ctx, "media-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), history[0].Likes)
	assert.Equal(t, int64(1), history[1].Likes)
}

func TestCapturer_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and captures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/media-1/insights", r.URL.Path)
			w.Write([]byte(`{"data":[{"name":"views","values":[{"value":10}]},{"name":"likes","values":[{"value":2}]}]}`))
		}))
		defer server.Close()

		client := threads.NewClient(threads.Config{BaseURL: server.URL, AccessToken: "tok"})
		defer client.Close()

		c, _ := newTestCapturer(t)
		snap, err := c.Refresh(ctx, client, "media-1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), snap.Views)
		assert.Equal(t, int64(2), snap.Likes)
	})

	t.Run("remote error is returned unchanged", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"Unsupported get request"}}`))
		}))
		defer server.Close()

		client := threads.NewClient(threads.Config{BaseURL: server.URL, AccessToken: "tok"})
		defer client.Close()

		c, _ := newTestCapturer(t)
		_, err := c.Refresh(ctx, client, "media-1")
		ie, ok := threads.AsIntegrationError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, ie.StatusCode)
		assert.Equal(t, "Threads API Error: Unsupported get request", ie.Message)
	})
}
