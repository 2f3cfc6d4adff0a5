// Package scheduler runs the periodic insights refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abdulachik/threados/internal/insights"
	"github.com/abdulachik/threados/internal/posts"
	"github.com/abdulachik/threados/internal/threads"
)

const (
	// InsightsJob tags the insights refresh job and names its health component.
	InsightsJob = "insights-refresh"

	defaultBatch = 20
)

// Credentials yields the connected account and opens clients for it.
type Credentials interface {
	Credential(ctx context.Context) (threads.Credential, error)
	NewClient(cred threads.Credential) *threads.Client
}

// Scheduler refreshes insights for recently published posts.
type Scheduler struct {
	creds    Credentials
	posts    *posts.Service
	capturer *insights.Capturer
	health   *Health
	interval time.Duration
	batch    int

	cron *gocron.Scheduler
	mu   sync.Mutex
}

// Config holds scheduler configuration.
type Config struct {
	Credentials Credentials
	Posts       *posts.Service
	Capturer    *insights.Capturer
	Health      *Health
	Interval    time.Duration // zero disables the periodic job
	Batch       int
}

// Result summarizes one refresh cycle.
type Result struct {
	Checked  int `json:"checked"`
	Captured int `json:"captured"`
	Failed   int `json:"failed"`
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}
	batch := cfg.Batch
	if batch <= 0 {
		batch = defaultBatch
	}

	return &Scheduler{
		creds:    cfg.Credentials,
		posts:    cfg.Posts,
		capturer: cfg.Capturer,
		health:   health,
		interval: cfg.Interval,
		batch:    batch,
	}
}

// Start schedules the refresh job. It is a no-op when the interval is zero.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		slog.Info("insights refresh disabled")
		return nil
	}

	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()

	_, err := cron.Every(s.interval).Tag(InsightsJob).Do(func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			slog.Error("insights refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule insights refresh: %w", err)
	}

	cron.StartAsync()
	s.cron = cron

	slog.Info("starting scheduler",
		"job", InsightsJob,
		"interval", s.interval,
		"batch", s.batch,
	)
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	s.cron.Stop()
	slog.Info("scheduler stopped")
}

// NextRun returns the next scheduled refresh, or the zero time when disabled.
func (s *Scheduler) NextRun() time.Time {
	if s.cron == nil {
		return time.Time{}
	}
	_, next := s.cron.NextRun()
	return next
}

// RunNow runs one refresh cycle synchronously. Cycles never overlap.
// Per-post failures are counted, not returned.
func (s *Scheduler) RunNow(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result

	cred, err := s.creds.Credential(ctx)
	if err != nil {
		s.health.SetUnhealthy(InsightsJob, err)
		return res, err
	}

	published, err := s.posts.RecentPublished(ctx, s.batch)
	if err != nil {
		s.health.SetUnhealthy(InsightsJob, err)
		return res, err
	}

	client := s.creds.NewClient(cred)
	defer client.Close()

	var lastErr error
	for _, p := range published {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		if _, err := s.capturer.Refresh(ctx, client, p.ThreadsMediaID.String); err != nil {
			res.Failed++
			lastErr = err
			slog.Warn("failed to refresh insights",
				"post_id", p.ID,
				"media_id", p.ThreadsMediaID.String,
				"error", err,
			)
			continue
		}
		res.Captured++
	}

	if lastErr != nil {
		s.health.SetUnhealthy(InsightsJob, fmt.Errorf("%d of %d refreshes failed: %w", res.Failed, res.Checked, lastErr))
	} else {
		s.health.SetHealthy(InsightsJob, fmt.Sprintf("captured %d snapshots", res.Captured))
	}

	slog.Info("insights refresh complete",
		"checked", res.Checked,
		"captured", res.Captured,
		"failed", res.Failed,
	)
	return res, nil
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}
