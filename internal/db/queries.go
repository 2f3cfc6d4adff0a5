package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by Queries.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the typed statements for the schema.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const postColumns = `id, threads_media_id, text, status, error_message, created_at`

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.ThreadsMediaID, &p.Text, &p.Status, &p.ErrorMessage, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]*Post, error) {
	defer rows.Close()
	var items []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreatePostParams struct {
	Text      string
	Status    string
	CreatedAt time.Time
}

const createPost = `INSERT INTO posts (text, status, created_at) VALUES (?, ?, ?)
RETURNING ` + postColumns

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (*Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, createPost, arg.Text, arg.Status, arg.CreatedAt.UTC()))
}

const getPost = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPost(ctx context.Context, id int64) (*Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const getPostByMediaID = `SELECT ` + postColumns + ` FROM posts WHERE threads_media_id = ?`

func (q *Queries) GetPostByMediaID(ctx context.Context, threadsMediaID string) (*Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByMediaID, threadsMediaID))
}

type MarkPostPublishedParams struct {
	ID             int64
	ThreadsMediaID string
}

const markPostPublished = `UPDATE posts SET status = 'PUBLISHED', threads_media_id = ?
WHERE id = ? AND status = 'PENDING'`

// MarkPostPublished reports the number of rows moved out of PENDING.
func (q *Queries) MarkPostPublished(ctx context.Context, arg MarkPostPublishedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, markPostPublished, arg.ThreadsMediaID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type MarkPostFailedParams struct {
	ID           int64
	ErrorMessage string
}

const markPostFailed = `UPDATE posts SET status = 'FAILED', error_message = ?
WHERE id = ? AND status = 'PENDING'`

func (q *Queries) MarkPostFailed(ctx context.Context, arg MarkPostFailedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, markPostFailed, arg.ErrorMessage, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markPostDeleted = `UPDATE posts SET status = 'DELETED'
WHERE threads_media_id = ? AND status = 'PUBLISHED'`

func (q *Queries) MarkPostDeleted(ctx context.Context, threadsMediaID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markPostDeleted, threadsMediaID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPosts = `SELECT ` + postColumns + ` FROM posts
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListPosts(ctx context.Context, limit int64) ([]*Post, error) {
	rows, err := q.db.QueryContext(ctx, listPosts, limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

const listPostsByStatus = `SELECT ` + postColumns + ` FROM posts
WHERE status = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`

type ListPostsByStatusParams struct {
	Status string
	Limit  int64
}

func (q *Queries) ListPostsByStatus(ctx context.Context, arg ListPostsByStatusParams) ([]*Post, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByStatus, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

type CountPostsByStatusRow struct {
	Status string
	Count  int64
}

const countPostsByStatus = `SELECT status, COUNT(*) FROM posts GROUP BY status ORDER BY status`

func (q *Queries) CountPostsByStatus(ctx context.Context) ([]CountPostsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countPostsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CountPostsByStatusRow
	for rows.Next() {
		var i CountPostsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateReplyParams struct {
	ThreadsReplyID sql.NullString
	ParentMediaID  string
	Text           string
	Author         sql.NullString
	CreatedAt      time.Time
}

const replyColumns = `id, threads_reply_id, parent_media_id, text, author, created_at`

const createReply = `INSERT INTO replies (threads_reply_id, parent_media_id, text, author, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + replyColumns

func (q *Queries) CreateReply(ctx context.Context, arg CreateReplyParams) (*Reply, error) {
	row := q.db.QueryRowContext(ctx, createReply,
		arg.ThreadsReplyID, arg.ParentMediaID, arg.Text, arg.Author, arg.CreatedAt.UTC())
	var r Reply
	if err := row.Scan(&r.ID, &r.ThreadsReplyID, &r.ParentMediaID, &r.Text, &r.Author, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const listRepliesByParent = `SELECT ` + replyColumns + ` FROM replies
WHERE parent_media_id = ?
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListRepliesByParent(ctx context.Context, parentMediaID string) ([]*Reply, error) {
	rows, err := q.db.QueryContext(ctx, listRepliesByParent, parentMediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Reply
	for rows.Next() {
		var r Reply
		if err := rows.Scan(&r.ID, &r.ThreadsReplyID, &r.ParentMediaID, &r.Text, &r.Author, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateInsightsSnapshotParams struct {
	ThreadsMediaID string
	Views          int64
	Likes          int64
	Replies        int64
	Reposts        int64
	Quotes         int64
	CapturedAt     time.Time
}

const snapshotColumns = `id, threads_media_id, views, likes, replies, reposts, quotes, captured_at`

func scanSnapshot(row rowScanner) (*InsightsSnapshot, error) {
	var s InsightsSnapshot
	if err := row.Scan(&s.ID, &s.ThreadsMediaID, &s.Views, &s.Likes, &s.Replies, &s.Reposts, &s.Quotes, &s.CapturedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

const createInsightsSnapshot = `INSERT INTO insights_snapshots
(threads_media_id, views, likes, replies, reposts, quotes, captured_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + snapshotColumns

func (q *Queries) CreateInsightsSnapshot(ctx context.Context, arg CreateInsightsSnapshotParams) (*InsightsSnapshot, error) {
	return scanSnapshot(q.db.QueryRowContext(ctx, createInsightsSnapshot,
		arg.ThreadsMediaID, arg.Views, arg.Likes, arg.Replies, arg.Reposts, arg.Quotes, arg.CapturedAt.UTC()))
}

type ListInsightsSnapshotsParams struct {
	ThreadsMediaID string
	Limit          int64
}

const listInsightsSnapshots = `SELECT ` + snapshotColumns + ` FROM insights_snapshots
WHERE threads_media_id = ?
ORDER BY captured_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListInsightsSnapshots(ctx context.Context, arg ListInsightsSnapshotsParams) ([]*InsightsSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listInsightsSnapshots, arg.ThreadsMediaID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*InsightsSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAccountByThreadsUserID = `SELECT id, threads_user_id, username, created_at
FROM accounts WHERE threads_user_id = ?`

func (q *Queries) GetAccountByThreadsUserID(ctx context.Context, threadsUserID string) (*Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, getAccountByThreadsUserID, threadsUserID).
		Scan(&a.ID, &a.ThreadsUserID, &a.Username, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type CreateAccountParams struct {
	ThreadsUserID string
	Username      string
}

const createAccount = `INSERT INTO accounts (threads_user_id, username) VALUES (?, ?)
RETURNING id, threads_user_id, username, created_at`

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (*Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx, createAccount, arg.ThreadsUserID, arg.Username).
		Scan(&a.ID, &a.ThreadsUserID, &a.Username, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type UpdateAccountUsernameParams struct {
	ID       int64
	Username string
}

const updateAccountUsername = `UPDATE accounts SET username = ? WHERE id = ?`

func (q *Queries) UpdateAccountUsername(ctx context.Context, arg UpdateAccountUsernameParams) error {
	_, err := q.db.ExecContext(ctx, updateAccountUsername, arg.Username, arg.ID)
	return err
}

const getTokenByAccountID = `SELECT id, account_id, access_token, scopes, expires_at, created_at
FROM tokens WHERE account_id = ? ORDER BY id LIMIT 1`

func (q *Queries) GetTokenByAccountID(ctx context.Context, accountID int64) (*Token, error) {
	var t Token
	err := q.db.QueryRowContext(ctx, getTokenByAccountID, accountID).
		Scan(&t.ID, &t.AccountID, &t.AccessToken, &t.Scopes, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type CreateTokenParams struct {
	AccountID   int64
	AccessToken string
	Scopes      string
	ExpiresAt   sql.NullTime
}

const createToken = `INSERT INTO tokens (account_id, access_token, scopes, expires_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateToken(ctx context.Context, arg CreateTokenParams) error {
	_, err := q.db.ExecContext(ctx, createToken, arg.AccountID, arg.AccessToken, arg.Scopes, arg.ExpiresAt)
	return err
}

type UpdateTokenParams struct {
	ID          int64
	AccessToken string
	Scopes      string
	ExpiresAt   sql.NullTime
}

const updateToken = `UPDATE tokens SET access_token = ?, scopes = ?, expires_at = ? WHERE id = ?`

func (q *Queries) UpdateToken(ctx context.Context, arg UpdateTokenParams) error {
	_, err := q.db.ExecContext(ctx, updateToken, arg.AccessToken, arg.Scopes, arg.ExpiresAt, arg.ID)
	return err
}

// The first token row is the credential; the system manages a single account.
const getCredential = `SELECT a.id, a.threads_user_id, a.username, t.access_token, t.scopes, t.expires_at
FROM tokens t
JOIN accounts a ON a.id = t.account_id
WHERE t.access_token != ''
ORDER BY t.id
LIMIT 1`

func (q *Queries) GetCredential(ctx context.Context) (*Credential, error) {
	var c Credential
	err := q.db.QueryRowContext(ctx, getCredential).
		Scan(&c.AccountID, &c.ThreadsUserID, &c.Username, &c.AccessToken, &c.Scopes, &c.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
