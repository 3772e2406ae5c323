package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the slice of pgx that the index hooks need. Both *pgxpool.Pool and
// pgx.Tx satisfy it; the article write path passes its open transaction so
// index maintenance is atomic with the triggering write.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Document is the derived text carried by one index entry. Title duplicates
// the article topic on purpose: it is the highest-weighted field.
type Document struct {
	ArticleID int64
	Title     string
	Body      string
	Category  string
	Topic     string
	Slug      string
}

// Index maintains the article_search table. It holds no connection of its
// own; every hook receives the caller's transaction (or pool) explicitly.
type Index struct {
	logger *slog.Logger
}

// NewIndex creates an Index. logger may be nil.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{logger: logger}
}

// Weighted tsvector: title A, topic B, category/slug C, body D. The weight
// order is what makes title matches outrank body-only matches in ts_rank.
const insertSearchRowSQL = `
INSERT INTO article_search (article_id, title, body, category, topic, slug, lexemes)
VALUES ($1, $2, $3, $4, $5, $6,
        setweight(to_tsvector('simple', $2), 'A') ||
        setweight(to_tsvector('simple', $5), 'B') ||
        setweight(to_tsvector('simple', $4), 'C') ||
        setweight(to_tsvector('simple', $6), 'C') ||
        setweight(to_tsvector('simple', $3), 'D'))`

const deleteSearchRowSQL = `DELETE FROM article_search WHERE article_id = $1`

// OnArticleInserted adds the index entry for a freshly inserted article.
// Must run inside the same transaction as the article insert.
func (ix *Index) OnArticleInserted(ctx context.Context, tx DBTX, doc Document) error {
	if _, err := tx.Exec(ctx, insertSearchRowSQL,
		doc.ArticleID, doc.Title, doc.Body, doc.Category, doc.Topic, doc.Slug); err != nil {
		return fmt.Errorf("indexing article %d: %w", doc.ArticleID, err)
	}
	ix.logger.Debug("article indexed", "article_id", doc.ArticleID)
	return nil
}

// OnArticleUpdated replaces the index entry for an updated article as a
// logical delete-then-insert. Because both statements run in the caller's
// transaction, readers observe the swap as a single step.
func (ix *Index) OnArticleUpdated(ctx context.Context, tx DBTX, old, updated Document) error {
	if old.ArticleID != updated.ArticleID {
		return fmt.Errorf("index update: article id changed from %d to %d", old.ArticleID, updated.ArticleID)
	}
	if _, err := tx.Exec(ctx, deleteSearchRowSQL, old.ArticleID); err != nil {
		return fmt.Errorf("removing stale index entry %d: %w", old.ArticleID, err)
	}
	if _, err := tx.Exec(ctx, insertSearchRowSQL,
		updated.ArticleID, updated.Title, updated.Body, updated.Category, updated.Topic, updated.Slug); err != nil {
		return fmt.Errorf("reindexing article %d: %w", updated.ArticleID, err)
	}
	ix.logger.Debug("article reindexed", "article_id", updated.ArticleID)
	return nil
}

// OnArticleDeleted removes the index entry for a deleted article. Must run
// before the articles row is deleted (the FK points at articles), inside the
// same transaction.
func (ix *Index) OnArticleDeleted(ctx context.Context, tx DBTX, articleID int64) error {
	if _, err := tx.Exec(ctx, deleteSearchRowSQL, articleID); err != nil {
		return fmt.Errorf("deindexing article %d: %w", articleID, err)
	}
	ix.logger.Debug("article deindexed", "article_id", articleID)
	return nil
}
