// Package posts owns the local post record and its state transitions.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/notify"
)

const defaultListLimit = 10

// ErrNotFound is returned when no local post matches.
var ErrNotFound = errors.New("post not found")

// Service manages post state. It assumes a single writer.
type Service struct {
	store    *db.Store
	notifier notify.Notifier
	now      func() time.Time
}

// NewService creates a new post service. notifier may be nil.
func NewService(store *db.Store, notifier notify.Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create inserts a PENDING post with no remote id.
func (s *Service) Create(ctx context.Context, text string) (*db.Post, error) {
	post, err := s.store.CreatePost(ctx, db.CreatePostParams{
		Text:      text,
		Status:    db.PostStatusPending,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// MarkPublished moves a PENDING post to PUBLISHED. A post that already left
// PENDING is returned unchanged.
func (s *Service) MarkPublished(ctx context.Context, id int64, remoteID string) (*db.Post, error) {
	if _, err := s.store.MarkPostPublished(ctx, db.MarkPostPublishedParams{
		ID:             id,
		ThreadsMediaID: remoteID,
	}); err != nil {
		return nil, fmt.Errorf("mark post published: %w", err)
	}
	return s.get(ctx, id)
}

// MarkFailed moves a PENDING post to FAILED. A post that already left
// PENDING is returned unchanged.
func (s *Service) MarkFailed(ctx context.Context, id int64, message string) (*db.Post, error) {
	if _, err := s.store.MarkPostFailed(ctx, db.MarkPostFailedParams{
		ID:           id,
		ErrorMessage: message,
	}); err != nil {
		return nil, fmt.Errorf("mark post failed: %w", err)
	}
	return s.get(ctx, id)
}

// MarkDeletedByRemoteID moves the PUBLISHED post carrying remoteID to DELETED.
// It returns ErrNotFound when no local post carries remoteID.
func (s *Service) MarkDeletedByRemoteID(ctx context.Context, remoteID string) (*db.Post, error) {
	if _, err := s.store.MarkPostDeleted(ctx, remoteID); err != nil {
		return nil, fmt.Errorf("mark post deleted: %w", err)
	}

	post, err := s.store.GetPostByMediaID(ctx, remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by media id: %w", err)
	}
	return post, nil
}

// List returns the newest posts of every status. limit <= 0 means 10.
func (s *Service) List(ctx context.Context, limit int) ([]*db.Post, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	posts, err := s.store.ListPosts(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Counts returns the number of posts per status.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.store.CountPostsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	counts := map[string]int64{
		db.PostStatusPending:   0,
		db.PostStatusPublished: 0,
		db.PostStatusFailed:    0,
		db.PostStatusDeleted:   0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// RecentPublished returns up to limit PUBLISHED posts, newest first.
func (s *Service) RecentPublished(ctx context.Context, limit int) ([]*db.Post, error) {
	posts, err := s.store.ListPostsByStatus(ctx, db.ListPostsByStatusParams{
		Status: db.PostStatusPublished,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return posts, nil
}

func (s *Service) get(ctx context.Context, id int64) (*db.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}
