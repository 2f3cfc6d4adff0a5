package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Send(context.Background(), Notification{
		Subject: "Publish failed",
		Body:    "Threads API Error: Unknown error",
		Fields:  map[string]string{"post_id": "3"},
	})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `subject="Publish failed"`)
	assert.Contains(t, out, "post_id=3")
}

func TestNewLogNotifier_DefaultLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NotNil(t, n.logger)
}

func TestWebhookNotifier_Send(t *testing.T) {
	t.Run("posts JSON payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var p webhookPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "Publish failed", p.Subject)
			assert.Equal(t, "boom", p.Body)
			assert.Equal(t, "7", p.Fields["post_id"])
			assert.False(t, p.SentAt.IsZero())

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		n := NewWebhookNotifier(WebhookConfig{URL: server.URL})
		err := n.Send(context.Background(), Notification{
			Subject: "Publish failed",
			Body:    "boom",
			Fields:  map[string]string{"post_id": "7"},
		})
		assert.NoError(t, err)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("nope"))
		}))
		defer server.Close()

		n := NewWebhookNotifier(WebhookConfig{URL: server.URL})
		err := n.Send(context.Background(), Notification{Subject: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
		assert.Contains(t, err.Error(), "nope")
	})
}

type failingNotifier struct{ err error }

func (f failingNotifier) Send(context.Context, Notification) error { return f.err }

type countingNotifier struct{ n int }

func (c *countingNotifier) Send(context.Context, Notification) error {
	c.n++
	return nil
}

func TestMulti_Send(t *testing.T) {
	boom := errors.New("boom")
	counter := &countingNotifier{}
	m := Multi{failingNotifier{err: boom}, counter}

	err := m.Send(context.Background(), Notification{Subject: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, counter.n)

	assert.NoError(t, Multi{counter}.Send(context.Background(), Notification{}))
	assert.Equal(t, 2, counter.n)
}
