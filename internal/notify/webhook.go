package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookNotifier posts notifications as JSON to a URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// WebhookConfig holds configuration for webhook notifications.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

type webhookPayload struct {
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Fields  map[string]string `json:"fields,omitempty"`
	SentAt  time.Time         `json:"sent_at"`
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the notification. Any non-2xx status is an error.
func (w *WebhookNotifier) Send(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(webhookPayload{
		Subject: notification.Subject,
		Body:    notification.Body,
		Fields:  notification.Fields,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook failed: %s - %s", resp.Status, string(body))
	}

	return nil
}
