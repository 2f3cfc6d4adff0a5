package db

import (
	"database/sql"
	"time"
)

// Post statuses.
const (
	PostStatusPending   = "PENDING"
	PostStatusPublished = "PUBLISHED"
	PostStatusFailed    = "FAILED"
	PostStatusDeleted   = "DELETED"
)

type Account struct {
	ID            int64
	ThreadsUserID string
	Username      string
	CreatedAt     time.Time
}

type Token struct {
	ID          int64
	AccountID   int64
	AccessToken string
	Scopes      string
	ExpiresAt   sql.NullTime
	CreatedAt   time.Time
}

type Post struct {
	ID             int64
	ThreadsMediaID sql.NullString
	Text           string
	Status         string
	ErrorMessage   sql.NullString
	CreatedAt      time.Time
}

type Reply struct {
	ID             int64
	ThreadsReplyID sql.NullString
	ParentMediaID  string
	Text           string
	Author         sql.NullString
	CreatedAt      time.Time
}

type InsightsSnapshot struct {
	ID             int64
	ThreadsMediaID string
	Views          int64
	Likes          int64
	Replies        int64
	Reposts        int64
	Quotes         int64
	CapturedAt     time.Time
}

// Credential is the connected account's token joined with its account row.
type Credential struct {
	AccountID     int64
	ThreadsUserID string
	Username      string
	AccessToken   string
	Scopes        string
	ExpiresAt     sql.NullTime
}
