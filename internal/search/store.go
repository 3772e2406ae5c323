package search

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// searchArticlesSQL matches the weighted tsvector against a prefix tsquery.
// The weight array {D,C,B,A} = {0.1,0.2,0.4,1.0} keeps ts_rank monotone in
// field importance; ascending id is the stable tie-break.
const searchArticlesSQL = `
SELECT a.id, a.category, a.slug, a.topic, a.updated_at,
       ts_headline('simple', s.body, query,
                   'StartSel=<mark>, StopSel=</mark>, MaxWords=18, MinWords=6, MaxFragments=2, FragmentDelimiter=" … "') AS snippet
FROM article_search s
JOIN articles a ON a.id = s.article_id,
     to_tsquery('simple', $1) query
WHERE s.lexemes @@ query
ORDER BY ts_rank('{0.1, 0.2, 0.4, 1.0}', s.lexemes, query) DESC, a.id ASC
LIMIT $2`

// Store executes index queries against PostgreSQL. It implements Querier.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on top of a pgx connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SearchArticles implements Querier.
func (s *Store) SearchArticles(ctx context.Context, tsQuery string, limit int32) ([]Result, error) {
	rows, err := s.pool.Query(ctx, searchArticlesSQL, tsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("querying article index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Category, &r.Slug, &r.Topic, &r.UpdatedAt, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search hits: %w", err)
	}
	return results, nil
}
