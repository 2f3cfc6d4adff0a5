package posts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/abdulachik/threados/internal/db"
	"github.com/abdulachik/threados/internal/notify"
	"github.com/abdulachik/threados/internal/threads"
)

// Publisher publishes text to the remote account.
type Publisher interface {
	PublishText(ctx context.Context, text, accountID string) (string, error)
}

// Deleter removes remote content.
type Deleter interface {
	DeleteContent(ctx context.Context, contentID string) error
}

// Replier publishes a reply under remote content.
type Replier interface {
	ReplyTo(ctx context.Context, text, parentID, accountID string) (string, error)
}

// Publish records a post, publishes it and stores the outcome. A remote
// failure is persisted as FAILED and the post is returned with a nil error;
// only storage errors are returned.
func (s *Service) Publish(ctx context.Context, publisher Publisher, accountID, text string) (*db.Post, error) {
	post, err := s.Create(ctx, text)
	if err != nil {
		return nil, err
	}

	mediaID, err := publisher.PublishText(ctx, text, accountID)

	// The outcome must be stored even if the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		message := failureMessage(err)
		slog.Error("publish failed",
			"post_id", post.ID,
			"error", message,
		)
		s.notify(ctx, notify.Notification{
			Subject: "Threads publish failed",
			Body:    message,
			Fields:  map[string]string{"post_id": strconv.FormatInt(post.ID, 10)},
		})
		return s.MarkFailed(ctx, post.ID, message)
	}

	slog.Info("post published",
		"post_id", post.ID,
		"media_id", mediaID,
	)
	return s.MarkPublished(ctx, post.ID, mediaID)
}

// Delete asks the remote side to delete remoteID, then marks the local post
// DELETED whatever the remote outcome. ErrNotFound means no local post.
func (s *Service) Delete(ctx context.Context, deleter Deleter, remoteID string) (*db.Post, error) {
	if err := deleter.DeleteContent(ctx, remoteID); err != nil {
		slog.Warn("remote delete failed, marking deleted locally",
			"media_id", remoteID,
			"error", err,
		)
	}
	return s.MarkDeletedByRemoteID(ctx, remoteID)
}

// Reply publishes a reply and records it. Nothing is stored when the remote
// call fails; its error is returned unchanged.
func (s *Service) Reply(ctx context.Context, replier Replier, accountID, parentID, text, author string) (*db.Reply, error) {
	replyID, err := replier.ReplyTo(ctx, text, parentID, accountID)
	if err != nil {
		return nil, err
	}

	reply, err := s.store.CreateReply(ctx, db.CreateReplyParams{
		ThreadsReplyID: sql.NullString{String: replyID, Valid: replyID != ""},
		ParentMediaID:  parentID,
		Text:           text,
		Author:         sql.NullString{String: author, Valid: author != ""},
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}

	slog.Info("reply recorded",
		"reply_id", replyID,
		"parent_media_id", parentID,
	)
	return reply, nil
}

// Replies returns the locally recorded replies under parentID.
func (s *Service) Replies(ctx context.Context, parentID string) ([]*db.Reply, error) {
	replies, err := s.store.ListRepliesByParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

func (s *Service) notify(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		slog.Warn("failed to send notification", "error", err)
	}
}

func failureMessage(err error) string {
	if ie, ok := threads.AsIntegrationError(err); ok {
		return ie.Message
	}
	return err.Error()
}
