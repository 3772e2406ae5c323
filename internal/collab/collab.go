// Package collab implements article comments with moderation and user bans.
//
// New comments start pending and become visible only after approval. Banned
// users cannot comment while their ban is active; a nil expiry means the ban
// is permanent.
package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Comment moderation states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxCommentLength caps comment bodies.
const MaxCommentLength = 4000

// Sentinel errors.
var (
	ErrNotFound       = errors.New("comment not found")
	ErrUnknownArticle = errors.New("article does not exist")
	ErrUserBanned     = errors.New("user is banned")
	ErrEmptyComment   = errors.New("comment body must not be empty")
	ErrCommentTooLong = errors.New("comment body too long")
	ErrInvalidStatus  = errors.New("invalid moderation status")
)

// Comment is one article comment.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ArticleID int64     `json:"articleId"`
	UserID    int64     `json:"userId"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ban is one user ban. A nil ExpiresAt never expires.
type Ban struct {
	UserID    int64      `json:"userId"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Store persists comments and bans. Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a collab store. logger may be nil.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// AddComment records a pending comment. Banned users are rejected.
func (s *Store) AddComment(ctx context.Context, articleID, userID int64, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if len(body) > MaxCommentLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrCommentTooLong, len(body))
	}

	banned, err := s.IsBanned(ctx, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrUserBanned
	}

	var c Comment
	err = s.pool.QueryRow(ctx,
		`INSERT INTO comments (id, article_id, user_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, article_id, user_id, body, status, created_at`,
		uuid.New(), articleID, userID, body).
		Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Body, &c.Status, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownArticle, articleID)
		}
		return nil, fmt.Errorf("adding comment: %w", err)
	}

	s.logger.Debug("comment added", "comment_id", c.ID, "article_id", articleID)
	return &c, nil
}

// Moderate sets a comment's moderation status.
func (s *Store) Moderate(ctx context.Context, commentID uuid.UUID, status string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE comments SET status = $2 WHERE id = $1`, commentID, status)
	if err != nil {
		return fmt.Errorf("moderating comment %s: %w", commentID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Comments returns an article's approved comments, newest first. With
// includePending set, pending ones appear too (moderation view).
func (s *Store) Comments(ctx context.Context, articleID int64, includePending bool) ([]Comment, error) {
	query := `SELECT id, article_id, user_id, body, status, created_at
FROM comments WHERE article_id = $1 AND status = 'approved'
ORDER BY created_at DESC, id`
	if includePending {
		query = `SELECT id, article_id, user_id, body, status, created_at
FROM comments WHERE article_id = $1 AND status IN ('approved', 'pending')
ORDER BY created_at DESC, id`
	}

	rows, err := s.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Body, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading comments: %w", err)
	}
	return comments, nil
}

// BanUser bans a user. A zero expiry makes the ban permanent. Re-banning
// updates reason and expiry.
func (s *Store) BanUser(ctx context.Context, userID int64, reason string, expiresAt time.Time) error {
	var expiry *time.Time
	if !expiresAt.IsZero() {
		expiry = &expiresAt
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_bans (user_id, reason, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET reason = EXCLUDED.reason, expires_at = EXCLUDED.expires_at, created_at = now()`,
		userID, reason, expiry)
	if err != nil {
		return fmt.Errorf("banning user %d: %w", userID, err)
	}

	s.logger.Info("user banned", "user_id", userID, "permanent", expiry == nil)
	return nil
}

// UnbanUser lifts a user's ban.
func (s *Store) UnbanUser(ctx context.Context, userID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_bans WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("unbanning user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsBanned reports whether a user has an active ban.
func (s *Store) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var expiresAt *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT expires_at FROM user_bans WHERE user_id = $1`, userID).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking ban for user %d: %w", userID, err)
	}
	if expiresAt == nil {
		return true, nil
	}
	return expiresAt.After(time.Now()), nil
}
