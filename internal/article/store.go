package article

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmaas/techwiki/internal/graph"
	"github.com/dmaas/techwiki/internal/search"
	"github.com/dmaas/techwiki/internal/slug"
)

// Store persists articles in PostgreSQL and keeps the full-text index in
// lockstep with every write. Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	index  *search.Index
	logger *slog.Logger
}

// NewStore creates an article store. index maintains article_search inside
// the store's write transactions. logger may be nil.
func NewStore(pool *pgxpool.Pool, index *search.Index, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, index: index, logger: logger}
}

const articleColumns = `id, category, topic, slug, markdown, references_json, status, views, version, created_at, updated_at`

const insertArticleSQL = `
INSERT INTO articles (category, topic, slug, markdown, references_json, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + articleColumns

const insertVersionSQL = `
INSERT INTO article_versions (article_id, markdown, references_json, status, created_by)
VALUES ($1, $2, $3, $4, $5)`

// Create inserts a new article together with its first revision and its
// search-index row, all in one transaction. The slug derives from the topic.
// An existing (category, slug) pair yields ErrDuplicate.
func (s *Store) Create(ctx context.Context, draft Draft) (*Article, error) {
	if draft.Status == "" {
		draft.Status = StatusPublished
	}
	if !validStatus(draft.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, draft.Status)
	}

	category := strings.ToLower(strings.TrimSpace(draft.Category))
	articleSlug := slug.Make(draft.Topic)
	if category == "" || articleSlug == "" {
		return nil, fmt.Errorf("category and topic must be non-empty")
	}

	refsJSON, err := marshalReferences(draft.References)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning article insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, insertArticleSQL,
		category, draft.Topic, articleSlug, draft.Markdown, refsJSON, draft.Status)
	a, err := scanArticle(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicate, category, articleSlug)
		}
		return nil, fmt.Errorf("inserting article: %w", err)
	}

	if _, err := tx.Exec(ctx, insertVersionSQL,
		a.ID, a.Markdown, refsJSON, a.Status, "system"); err != nil {
		return nil, fmt.Errorf("recording article version: %w", err)
	}

	if err := s.index.OnArticleInserted(ctx, tx, searchDocument(a)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing article insert: %w", err)
	}

	s.logger.Debug("article created", "id", a.ID, "category", a.Category, "slug", a.Slug)
	return a, nil
}

// Get returns an article by its natural key. Category and slug are
// normalized to lower case before lookup.
func (s *Store) Get(ctx context.Context, category, articleSlug string) (*Article, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE category = $1 AND slug = $2`,
		strings.ToLower(category), strings.ToLower(articleSlug))
	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, category, articleSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("loading article %s/%s: %w", category, articleSlug, err)
	}
	return a, nil
}

// GetByID returns an article by numeric id.
func (s *Store) GetByID(ctx context.Context, id int64) (*Article, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading article %d: %w", id, err)
	}
	return a, nil
}

const updateArticleSQL = `
UPDATE articles
SET markdown = $2, references_json = $3, status = $4,
    version = version + 1, updated_at = now()
WHERE id = $1
RETURNING ` + articleColumns

// Update replaces an article's body, references and status, bumps its
// version, records the revision and swaps the search-index row, all in one
// transaction.
func (s *Store) Update(ctx context.Context, id int64, markdown string, references []string, status string) (*Article, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	refsJSON, err := marshalReferences(references)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning article update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := scanArticle(tx.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading article %d for update: %w", id, err)
	}

	updated, err := scanArticle(tx.QueryRow(ctx, updateArticleSQL, id, markdown, refsJSON, status))
	if err != nil {
		return nil, fmt.Errorf("updating article %d: %w", id, err)
	}

	if _, err := tx.Exec(ctx, insertVersionSQL,
		updated.ID, updated.Markdown, refsJSON, updated.Status, "system"); err != nil {
		return nil, fmt.Errorf("recording article version: %w", err)
	}

	if err := s.index.OnArticleUpdated(ctx, tx, searchDocument(old), searchDocument(updated)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing article update: %w", err)
	}

	s.logger.Debug("article updated", "id", updated.ID, "version", updated.Version)
	return updated, nil
}

// Delete removes an article, its revisions (FK cascade) and its index row in
// one transaction. The index row goes first: its FK points at articles.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning article delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.index.OnArticleDeleted(ctx, tx, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing article delete: %w", err)
	}

	s.logger.Debug("article deleted", "id", id)
	return nil
}

// IncrementViews bumps the view counter and returns the new value.
func (s *Store) IncrementViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := s.pool.QueryRow(ctx,
		`UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("bumping views for article %d: %w", id, err)
	}
	return views, nil
}

const summaryColumns = `id, category, topic, slug, status, views, updated_at`

// List returns article summaries, optionally filtered by category, newest
// first.
func (s *Store) List(ctx context.Context, category string, limit, offset int32) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if category != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT `+summaryColumns+` FROM articles WHERE category = $1 ORDER BY updated_at DESC, id DESC LIMIT $2 OFFSET $3`,
			strings.ToLower(category), limit, offset)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+summaryColumns+` FROM articles ORDER BY updated_at DESC, id DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return scanSummaries(rows)
}

// Recent returns non-draft articles by last update, newest first.
func (s *Store) Recent(ctx context.Context, limit int32) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM articles WHERE status <> 'draft' ORDER BY updated_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent articles: %w", err)
	}
	return scanSummaries(rows)
}

// Trending returns non-draft articles by views, then recency.
func (s *Store) Trending(ctx context.Context, limit int32) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM articles WHERE status <> 'draft' ORDER BY views DESC, updated_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing trending articles: %w", err)
	}
	return scanSummaries(rows)
}

// Random returns one random non-draft article.
func (s *Store) Random(ctx context.Context) (*Article, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE status <> 'draft' ORDER BY random() LIMIT 1`)
	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading random article: %w", err)
	}
	return a, nil
}

// Versions returns an article's revision history, newest first.
func (s *Store) Versions(ctx context.Context, articleID int64) ([]Version, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, article_id, markdown, references_json, status, created_at, created_by
		 FROM article_versions WHERE article_id = $1 ORDER BY id DESC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("listing versions for article %d: %w", articleID, err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var (
			v        Version
			refsJSON []byte
		)
		if err := rows.Scan(&v.ID, &v.ArticleID, &v.Markdown, &refsJSON, &v.Status, &v.CreatedAt, &v.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning article version: %w", err)
		}
		if v.References, err = unmarshalReferences(refsJSON); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading article versions: %w", err)
	}
	return versions, nil
}

// Corpus implements graph.CorpusReader: non-draft articles ordered by views
// then recency, markdown included only when the caller needs it.
func (s *Store) Corpus(ctx context.Context, includeMarkdown bool, limit int) ([]graph.CorpusArticle, error) {
	body := "''"
	if includeMarkdown {
		body = "markdown"
	}
	query := `SELECT id, category, slug, topic, ` + body + ` AS markdown
FROM articles WHERE status <> 'draft'
ORDER BY views DESC, updated_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading article corpus: %w", err)
	}
	defer rows.Close()

	var corpus []graph.CorpusArticle
	for rows.Next() {
		var c graph.CorpusArticle
		if err := rows.Scan(&c.ID, &c.Category, &c.Slug, &c.Topic, &c.Markdown); err != nil {
			return nil, fmt.Errorf("scanning corpus row: %w", err)
		}
		corpus = append(corpus, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading article corpus: %w", err)
	}
	return corpus, nil
}

func searchDocument(a *Article) search.Document {
	return search.Document{
		ArticleID: a.ID,
		Title:     a.Topic,
		Body:      a.Markdown,
		Category:  a.Category,
		Topic:     a.Topic,
		Slug:      a.Slug,
	}
}

func marshalReferences(refs []string) ([]byte, error) {
	if refs == nil {
		refs = []string{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshaling references: %w", err)
	}
	return b, nil
}

func unmarshalReferences(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var refs []string
	if err := json.Unmarshal(b, &refs); err != nil {
		return nil, fmt.Errorf("unmarshaling references: %w", err)
	}
	return refs, nil
}

func scanArticle(row pgx.Row) (*Article, error) {
	var (
		a        Article
		refsJSON []byte
	)
	if err := row.Scan(&a.ID, &a.Category, &a.Topic, &a.Slug, &a.Markdown, &refsJSON,
		&a.Status, &a.Views, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	refs, err := unmarshalReferences(refsJSON)
	if err != nil {
		return nil, err
	}
	a.References = refs
	return &a, nil
}

func scanSummaries(rows pgx.Rows) ([]Summary, error) {
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Category, &s.Topic, &s.Slug, &s.Status, &s.Views, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning article summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading article summaries: %w", err)
	}
	return summaries, nil
}
