package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DB implements Querier against PostgreSQL.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a DB on top of a pgx connection pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

const upsertEmbeddingSQL = `
INSERT INTO article_embeddings (article_id, embedding, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (article_id) DO UPDATE
SET embedding = EXCLUDED.embedding, updated_at = now()`

// UpsertEmbedding implements Querier.
func (d *DB) UpsertEmbedding(ctx context.Context, articleID int64, embedding pgvector.Vector) error {
	if _, err := d.pool.Exec(ctx, upsertEmbeddingSQL, articleID, embedding); err != nil {
		return fmt.Errorf("upserting embedding: %w", err)
	}
	return nil
}

// relatedArticlesSQL ranks other non-draft articles by cosine distance to
// the source article's stored vector. <=> is distance, so similarity is its
// complement.
const relatedArticlesSQL = `
SELECT a.id, a.category, a.slug, a.topic,
       1 - (e.embedding <=> src.embedding) AS similarity
FROM article_embeddings src
JOIN article_embeddings e ON e.article_id <> src.article_id
JOIN articles a ON a.id = e.article_id
WHERE src.article_id = $1 AND a.status <> 'draft'
ORDER BY e.embedding <=> src.embedding ASC, a.id ASC
LIMIT $2`

// RelatedArticles implements Querier.
func (d *DB) RelatedArticles(ctx context.Context, articleID int64, k int32) ([]Related, error) {
	rows, err := d.pool.Query(ctx, relatedArticlesSQL, articleID, k)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var results []Related
	for rows.Next() {
		var r Related
		if err := rows.Scan(&r.ArticleID, &r.Category, &r.Slug, &r.Topic, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning related article: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading related articles: %w", err)
	}
	return results, nil
}

// DeleteEmbedding implements Querier.
func (d *DB) DeleteEmbedding(ctx context.Context, articleID int64) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM article_embeddings WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("deleting embedding: %w", err)
	}
	return nil
}
