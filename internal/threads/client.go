// Package threads talks to the Threads Graph API.
package threads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Threads Graph API endpoint.
	DefaultBaseURL = "https://graph.threads.net"

	defaultTimeout = 30 * time.Second
)

// Credential is a bearer token and the account it authorizes.
type Credential struct {
	AccessToken string
	UserID      string
	Username    string
}

// Config holds configuration for the client.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client executes requests against the Graph API on behalf of one credential.
// It owns its connection pool; call Close when done with it.
type Client struct {
	httpClient  *http.Client
	transport   *http.Transport
	baseURL     string
	accessToken string
}

// NewClient creates a new client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport:   transport,
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
	}
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// Execute performs one API call and returns the JSON response.
// GET requests carry query in the URL; other methods send body as JSON.
// Every failure is an *IntegrationError. There are no retries.
func (c *Client) Execute(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, method, path, body, query)
	if err != nil {
		return nil, classify(0, nil, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(0, nil, fmt.Errorf("read response: %w", err))
	}

	slog.Debug("threads request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)

	if err := classify(resp.StatusCode, respBody, nil); err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(respBody) {
		return nil, classify(0, nil, fmt.Errorf("parse response: invalid JSON body"))
	}

	return json.RawMessage(respBody), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, query url.Values) (*http.Request, error) {
	method = strings.ToUpper(method)
	target := c.baseURL + path

	var reader io.Reader
	if method == http.MethodGet {
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
	} else if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// decode unmarshals an Execute result, classifying failures as unexpected.
func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return classify(0, nil, fmt.Errorf("parse response: %w", err))
	}
	return nil
}
