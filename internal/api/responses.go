package api

import (
	"database/sql"
	"time"

	"github.com/abdulachik/threados/internal/db"
)

type postResponse struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	ThreadsMediaID *string   `json:"threads_media_id"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}

type replyResponse struct {
	ID             int64     `json:"id"`
	ThreadsReplyID *string   `json:"threads_reply_id"`
	ParentMediaID  string    `json:"parent_media_id"`
	Text           string    `json:"text"`
	Author         *string   `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
}

type snapshotResponse struct {
	ID             int64     `json:"id"`
	ThreadsMediaID string    `json:"threads_media_id"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Replies        int64     `json:"replies"`
	Reposts        int64     `json:"reposts"`
	Quotes         int64     `json:"quotes"`
	CapturedAt     time.Time `json:"captured_at"`
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func toPost(p *db.Post) postResponse {
	return postResponse{
		ID:             p.ID,
		Text:           p.Text,
		ThreadsMediaID: nullable(p.ThreadsMediaID),
		Status:         p.Status,
		ErrorMessage:   nullable(p.ErrorMessage),
		CreatedAt:      p.CreatedAt,
	}
}

func toPosts(ps []*db.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPost(p))
	}
	return out
}

func toReply(r *db.Reply) replyResponse {
	return replyResponse{
		ID:             r.ID,
		ThreadsReplyID: nullable(r.ThreadsReplyID),
		ParentMediaID:  r.ParentMediaID,
		Text:           r.Text,
		Author:         nullable(r.Author),
		CreatedAt:      r.CreatedAt,
	}
}

func toSnapshot(s *db.InsightsSnapshot) snapshotResponse {
	return snapshotResponse{
		ID:             s.ID,
		ThreadsMediaID: s.ThreadsMediaID,
		Views:          s.Views,
		Likes:          s.Likes,
		Replies:        s.Replies,
		Reposts:        s.Reposts,
		Quotes:         s.Quotes,
		CapturedAt:     s.CapturedAt,
	}
}
