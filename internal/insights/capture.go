// Package insights turns raw metric responses into stored snapshots.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/threads"
)

// ErrMalformedMetric is returned when a known metric has no usable value.
var ErrMalformedMetric = errors.New("malformed metric")

// Fetcher fetches raw metrics for remote content.
type Fetcher interface {
	FetchInsights(ctx context.Context, contentID string) ([]threads.Metric, error)
}

// Capturer persists one snapshot per capture.
type Capturer struct {
	store *db.Store
	now   func() time.Time
}

// NewCapturer creates a new capturer.
func NewCapturer(store *db.Store) *Capturer {
	return &Capturer{
		store: store,
		now:   time.Now,
	}
}

type metricValue struct {
	Value json.Number `json:"value"`
}

// Capture parses metrics and inserts a new snapshot for contentID. Unknown
// metric names are ignored and absent metrics stay at zero.
func (c *Capturer) Capture(ctx context.Context, contentID string, metrics []threads.Metric) (*db.InsightsSnapshot, error) {
	params := db.CreateInsightsSnapshotParams{
		ThreadsMediaID: contentID,
		CapturedAt:     c.now(),
	}

	counters := map[string]*int64{
		"views":   &params.Views,
		"likes":   &params.Likes,
		"replies": &params.Replies,
		"reposts": &params.Reposts,
		"quotes":  &params.Quotes,
	}

	for _, m := range metrics {
		counter, ok := counters[m.Name]
		if !ok {
			continue
		}
		v, err := firstValue(m.Values)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformedMetric, m.Name, err)
		}
		*counter = v
	}

	snapshot, err := c.store.CreateInsightsSnapshot(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create insights snapshot: %w", err)
	}
	return snapshot, nil
}

// Refresh fetches metrics for contentID and captures them.
func (c *Capturer) Refresh(ctx context.Context, fetcher Fetcher, contentID string) (*db.InsightsSnapshot, error) {
	metrics, err := fetcher.FetchInsights(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return c.Capture(ctx, contentID, metrics)
}

// History returns up to limit snapshots for contentID, newest first.
func (c *Capturer) History(ctx context.Context, contentID string, limit int) ([]*db.InsightsSnapshot, error) {
	snapshots, err := c.store.ListInsightsSnapshots(ctx, db.ListInsightsSnapshotsParams{
		ThreadsMediaID: contentID,
		Limit:          int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list insights snapshots: %w", err)
	}
	return snapshots, nil
}

func firstValue(raw json.RawMessage) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var values []metricValue
	if err := dec.Decode(&values); err != nil {
		return 0, fmt.Errorf("values is not a list: %w", err)
	}
	if len(values) == 0 {
		return 0, errors.New("values is empty")
	}
	if values[0].Value == "" {
		return 0, errors.New("first value is missing")
	}

	n, err := values[0].Value.Int64()
	if err != nil {
		f, ferr := values[0].Value.Float64()
		if ferr != nil || math.IsNaN(f) {
			return 0, fmt.Errorf("value %q is not numeric", values[0].Value)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
		if f < 0 || f >= float64(math.MaxInt64) {
			return 0, fmt.Errorf("value %q is out of range", values[0].Value)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("value %d is negative", n)
	}
	return n, nil
}
