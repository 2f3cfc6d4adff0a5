// Package oauth connects a Threads account and serves its credential.
package oauth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/threads"
)

var (
	// ErrNotConnected is returned when no account has a stored token.
	ErrNotConnected = errors.New("no connected Threads account")
	// ErrExchangeFailed is returned when the code exchange is rejected.
	ErrExchangeFailed = errors.New("failed to exchange authorization code")
	// ErrNoAccessToken is returned when the exchange response carries no token.
	ErrNoAccessToken = errors.New("no access token received")
	// ErrProfileFetch is returned when the new token cannot read its profile.
	ErrProfileFetch = errors.New("failed to fetch user info from Threads")
)

// Service runs the authorization-code flow against the stored account.
type Service struct {
	store        *db.Store
	httpClient   *http.Client
	authBase     string
	graphBase    string
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	timeout      time.Duration
	now          func() time.Time
}

// NewService creates a new OAuth service from cfg.
func NewService(store *db.Store, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		httpClient:   &http.Client{Timeout: cfg.ThreadsHTTPTimeout},
		authBase:     strings.TrimRight(cfg.ThreadsAuthBase, "/"),
		graphBase:    strings.TrimRight(cfg.ThreadsGraphBase, "/"),
		clientID:     cfg.ThreadsClientID,
		clientSecret: cfg.ThreadsClientSecret,
		redirectURI:  cfg.ThreadsRedirectURI,
		scopes:       cfg.ThreadsScopes,
		timeout:      cfg.ThreadsHTTPTimeout,
		now:          time.Now,
	}
}

// AuthorizeURL returns the consent page URL carrying state.
func (s *Service) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", s.clientID)
	q.Set("redirect_uri", s.redirectURI)
	q.Set("scope", s.scopes)
	q.Set("response_type", "code")
	if state != "" {
		q.Set("state", state)
	}
	return s.authBase + "/oauth/authorize?" + q.Encode()
}

// TokenResponse is the access token endpoint's answer.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	UserID      json.Number `json:"user_id"`
	ExpiresIn   int64       `json:"expires_in"`
}

// Exchange trades an authorization code for an access token.
func (s *Service) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphBase+"/oauth/access_token",
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w (status %d): %s", ErrExchangeFailed, resp.StatusCode, string(body))
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	slog.Debug("obtained Threads access token",
		"expires_in", tok.ExpiresIn,
	)

	return &tok, nil
}

// Connect completes the flow for code: it exchanges the code, reads the
// account's profile with the new token and stores both.
func (s *Service) Connect(ctx context.Context, code string) (*db.Account, error) {
	tok, err := s.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	grant := Grant{
		ThreadsUserID: profile.ID,
		Username:      profile.Username,
		AccessToken:   tok.AccessToken,
		Scopes:        s.scopes,
	}
	if tok.ExpiresIn > 0 {
		grant.ExpiresAt = s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	account, err := s.Save(ctx, grant)
	if err != nil {
		return nil, err
	}

	slog.Info("connected Threads account",
		"username", account.Username,
		"threads_user_id", account.ThreadsUserID,
	)
	return account, nil
}

func (s *Service) fetchProfile(ctx context.Context, accessToken string) (*threads.Profile, error) {
	client := threads.NewClient(threads.Config{
		BaseURL:     s.graphBase,
		AccessToken: accessToken,
		Timeout:     s.timeout,
	})
	defer client.Close()

	profile, err := client.FetchProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile has no id", ErrProfileFetch)
	}
	return profile, nil
}

// Grant is an access token and the account it belongs to.
type Grant struct {
	ThreadsUserID string
	Username      string
	AccessToken   string
	Scopes        string
	ExpiresAt     time.Time // zero when the token does not expire
}

// Save upserts the account by Threads user id and its token.
func (s *Service) Save(ctx context.Context, g Grant) (*db.Account, error) {
	expiresAt := sql.NullTime{Time: g.ExpiresAt.UTC(), Valid: !g.ExpiresAt.IsZero()}

	var account *db.Account
	err := s.store.InTx(ctx, func(tx *sql.Tx, q *db.Queries) error {
		var err error
		account, err = q.GetAccountByThreadsUserID(ctx, g.ThreadsUserID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			account, err = q.CreateAccount(ctx, db.CreateAccountParams{
				ThreadsUserID: g.ThreadsUserID,
				Username:      g.Username,
			})
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
		case err != nil:
			return fmt.Errorf("get account: %w", err)
		case account.Username != g.Username && g.Username != "":
			if err := q.UpdateAccountUsername(ctx, db.UpdateAccountUsernameParams{
				ID:       account.ID,
				Username: g.Username,
			}); err != nil {
				return fmt.Errorf("update account: %w", err)
			}
			account.Username = g.Username
		}

		token, err := q.GetTokenByAccountID(ctx, account.ID)
		if errors.Is(err, sql.ErrNoRows) {
			if err := q.CreateToken(ctx, db.CreateTokenParams{
				AccountID:   account.ID,
				AccessToken: g.AccessToken,
				Scopes:      g.Scopes,
				ExpiresAt:   expiresAt,
			}); err != nil {
				return fmt.Errorf("create token: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}

		if err := q.UpdateToken(ctx, db.UpdateTokenParams{
			ID:          token.ID,
			AccessToken: g.AccessToken,
			Scopes:      g.Scopes,
			ExpiresAt:   expiresAt,
		}); err != nil {
			return fmt.Errorf("update token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Status describes the connected account.
type Status struct {
	Connected     bool       `json:"connected"`
	Username      *string    `json:"username"`
	ThreadsUserID *string    `json:"threads_user_id"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Scopes        []string   `json:"scopes"`
}

// Status reports whether an account is connected.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	cred, err := s.store.GetCredential(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &Status{Scopes: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	st := &Status{
		Connected:     true,
		Username:      &cred.Username,
		ThreadsUserID: &cred.ThreadsUserID,
		Scopes:        splitScopes(cred.Scopes),
	}
	if cred.ExpiresAt.Valid {
		st.ExpiresAt = &cred.ExpiresAt.Time
	}
	return st, nil
}

// Credential returns the stored credential, or ErrNotConnected.
// The system manages a single account.
func (s *Service) Credential(ctx context.Context) (threads.Credential, error) {
	cred, err := s.store.GetCredential(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return threads.Credential{}, ErrNotConnected
	}
	if err != nil {
		return threads.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return threads.Credential{
		AccessToken: cred.AccessToken,
		UserID:      cred.ThreadsUserID,
		Username:    cred.Username,
	}, nil
}

// NewClient opens a Threads client for cred. The caller must Close it.
func (s *Service) NewClient(cred threads.Credential) *threads.Client {
	return threads.NewClient(threads.Config{
		BaseURL:     s.graphBase,
		AccessToken: cred.AccessToken,
		Timeout:     s.timeout,
	})
}

func splitScopes(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
