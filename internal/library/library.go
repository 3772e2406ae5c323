// Package library implements per-user bookmarks and reading lists.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyBookmarked = errors.New("article already bookmarked")
	ErrAlreadyInList     = errors.New("article already in reading list")
	ErrUnknownArticle    = errors.New("article does not exist")
	ErrEmptyListName     = errors.New("reading list name must not be empty")
)

// Bookmark is one saved article for a user.
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ArticleID int64     `json:"articleId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReadingList is a named, ordered collection of articles.
type ReadingList struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListItem is one entry of a reading list.
type ListItem struct {
	ListID    uuid.UUID `json:"listId"`
	ArticleID int64     `json:"articleId"`
	Position  int32     `json:"position"`
	AddedAt   time.Time `json:"addedAt"`
}

// Store persists library data. Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a library store. logger may be nil.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// AddBookmark saves an article for a user. Bookmarking the same article
// twice yields ErrAlreadyBookmarked.
func (s *Store) AddBookmark(ctx context.Context, userID, articleID int64) (*Bookmark, error) {
	var b Bookmark
	err := s.pool.QueryRow(ctx,
		`INSERT INTO bookmarks (user_id, article_id) VALUES ($1, $2)
		 RETURNING id, user_id, article_id, created_at`,
		userID, articleID).Scan(&b.ID, &b.UserID, &b.ArticleID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrAlreadyBookmarked
			case pgerrcode.ForeignKeyViolation:
				return nil, fmt.Errorf("%w: id %d", ErrUnknownArticle, articleID)
			}
		}
		return nil, fmt.Errorf("adding bookmark: %w", err)
	}
	return &b, nil
}

// RemoveBookmark deletes a user's bookmark for an article.
func (s *Store) RemoveBookmark(ctx context.Context, userID, articleID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND article_id = $2`, userID, articleID)
	if err != nil {
		return fmt.Errorf("removing bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Bookmarks lists a user's bookmarks, newest first.
func (s *Store) Bookmarks(ctx context.Context, userID int64) ([]Bookmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, article_id, created_at FROM bookmarks
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.ArticleID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bookmarks: %w", err)
	}
	return bookmarks, nil
}

// CreateList creates a reading list for a user.
func (s *Store) CreateList(ctx context.Context, userID int64, name string) (*ReadingList, error) {
	if name == "" {
		return nil, ErrEmptyListName
	}

	var l ReadingList
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reading_lists (id, user_id, name) VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, created_at`,
		uuid.New(), userID, name).Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating reading list: %w", err)
	}
	return &l, nil
}

// DeleteList removes a reading list and its items.
func (s *Store) DeleteList(ctx context.Context, listID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reading_lists WHERE id = $1`, listID)
	if err != nil {
		return fmt.Errorf("deleting reading list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Lists returns a user's reading lists, newest first.
func (s *Store) Lists(ctx context.Context, userID int64) ([]ReadingList, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM reading_lists
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reading lists: %w", err)
	}
	defer rows.Close()

	var lists []ReadingList
	for rows.Next() {
		var l ReadingList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reading list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reading lists: %w", err)
	}
	return lists, nil
}

// AddToList appends an article at the end of a reading list.
func (s *Store) AddToList(ctx context.Context, listID uuid.UUID, articleID int64) (*ListItem, error) {
	var item ListItem
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reading_list_items (list_id, article_id, position)
		 VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM reading_list_items WHERE list_id = $1), 0))
		 RETURNING list_id, article_id, position, added_at`,
		listID, articleID).Scan(&item.ListID, &item.ArticleID, &item.Position, &item.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrAlreadyInList
			case pgerrcode.ForeignKeyViolation:
				return nil, ErrNotFound
			}
		}
		return nil, fmt.Errorf("adding article to list: %w", err)
	}
	return &item, nil
}

// RemoveFromList drops an article from a reading list.
func (s *Store) RemoveFromList(ctx context.Context, listID uuid.UUID, articleID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reading_list_items WHERE list_id = $1 AND article_id = $2`,
		listID, articleID)
	if err != nil {
		return fmt.Errorf("removing article from list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListItems returns a reading list's items in position order.
func (s *Store) ListItems(ctx context.Context, listID uuid.UUID) ([]ListItem, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reading_lists WHERE id = $1)`, listID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking reading list: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT list_id, article_id, position, added_at FROM reading_list_items
		 WHERE list_id = $1 ORDER BY position ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("listing reading list items: %w", err)
	}
	defer rows.Close()

	items := []ListItem{}
	for rows.Next() {
		var item ListItem
		if err := rows.Scan(&item.ListID, &item.ArticleID, &item.Position, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning reading list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reading list items: %w", err)
	}
	return items, nil
}
