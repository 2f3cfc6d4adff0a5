package app

import (
	"context"
	"fmt"

	"github.com/abdulachik/threados/internal/api"
	"github.com/abdulachik/threados/internal/config"
	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/insights"
	"github.com/abdulachik/threados/internal/notify"
	"github.com/abdulachik/threados/internal/oauth"
	"github.com/abdulachik/threados/internal/posts"
	"github.com/abdulachik/threados/internal/scheduler"
	"github.com/abdulachik/threados/internal/threads"
)

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Store     *db.Store
	Notifier  notify.Notifier
	OAuth     *oauth.Service
	Posts     *posts.Service
	Insights  *insights.Capturer
	Scheduler *scheduler.Scheduler
	Health    *scheduler.Health
}

// New creates a new application instance with all dependencies wired up.
// The database is opened and migrated.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	health := scheduler.NewHealth()
	health.SetHealthy("database", "migrated")

	notifiers := notify.Multi{notify.NewLogNotifier(nil)}
	if cfg.NotifyWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(notify.WebhookConfig{
			URL: cfg.NotifyWebhookURL,
		}))
	}

	oauthSvc := oauth.NewService(store, cfg)
	postSvc := posts.NewService(store, notifiers)
	capturer := insights.NewCapturer(store)

	sched := scheduler.New(scheduler.Config{
		Credentials: oauthSvc,
		Posts:       postSvc,
		Capturer:    capturer,
		Health:      health,
		Interval:    cfg.InsightsInterval,
		Batch:       cfg.InsightsBatch,
	})

	return &App{
		Config:    cfg,
		Store:     store,
		Notifier:  notifiers,
		OAuth:     oauthSvc,
		Posts:     postSvc,
		Insights:  capturer,
		Scheduler: sched,
		Health:    health,
	}, nil
}

// API builds the HTTP handler over the app's services.
func (a *App) API() *api.Handler {
	return api.New(api.Deps{
		Config:    a.Config,
		OAuth:     a.OAuth,
		Posts:     a.Posts,
		Insights:  a.Insights,
		Scheduler: a.Scheduler,
	})
}

// Client opens a Threads client for the connected account.
// The caller must Close the client.
func (a *App) Client(ctx context.Context) (threads.Credential, *threads.Client, error) {
	cred, err := a.OAuth.Credential(ctx)
	if err != nil {
		return threads.Credential{}, nil, err
	}
	return cred, a.OAuth.NewClient(cred), nil
}

// Close closes all resources.
func (a *App) Close() error {
	a.Scheduler.Stop()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
