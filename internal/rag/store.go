package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"

	"github.com/dmaas/techwiki/internal/article"
)

// embedBodyLimit caps how much of the article body feeds the embedder.
// Embedding quality plateaus long before full-article length and provider
// token limits are finite.
const embedBodyLimit = 4000

// DefaultTopK is the related-article count when the caller passes k <= 0.
const DefaultTopK = 5

// Related is one related-article hit. Similarity is cosine, 1.0 = identical.
type Related struct {
	ArticleID  int64   `json:"articleId"`
	Category   string  `json:"category"`
	Slug       string  `json:"slug"`
	Topic      string  `json:"topic"`
	Similarity float32 `json:"similarity"`
}

// Querier is the database slice the store needs.
type Querier interface {
	UpsertEmbedding(ctx context.Context, articleID int64, embedding pgvector.Vector) error
	RelatedArticles(ctx context.Context, articleID int64, k int32) ([]Related, error)
	DeleteEmbedding(ctx context.Context, articleID int64) error
}

// Store embeds articles and answers related-article queries.
// Safe for concurrent use.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a Store. logger may be nil.
func New(queries Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{queries: queries, embedder: embedder, logger: logger}
}

// IndexArticle embeds an article and upserts its vector.
func (s *Store) IndexArticle(ctx context.Context, a *article.Article) error {
	body := a.Markdown
	if len(body) > embedBodyLimit {
		body = body[:embedBodyLimit]
	}
	content := a.Topic + "\n\n" + body

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(content)}},
		},
	})
	if err != nil {
		return fmt.Errorf("embedding article %d: %w", a.ID, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return fmt.Errorf("empty embedding returned for article %d", a.ID)
	}

	vec := pgvector.NewVector(resp.Embeddings[0].Embedding)
	if err := s.queries.UpsertEmbedding(ctx, a.ID, vec); err != nil {
		return fmt.Errorf("storing embedding for article %d: %w", a.ID, err)
	}

	s.logger.Debug("article embedded", "article_id", a.ID)
	return nil
}

// Related returns up to k articles closest to the given one by cosine
// distance. An article without a stored embedding yields no results, not an
// error.
func (s *Store) Related(ctx context.Context, articleID int64, k int) ([]Related, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	results, err := s.queries.RelatedArticles(ctx, articleID, int32(k))
	if err != nil {
		return nil, fmt.Errorf("querying related articles for %d: %w", articleID, err)
	}
	if results == nil {
		results = []Related{}
	}
	return results, nil
}

// Remove deletes an article's embedding.
func (s *Store) Remove(ctx context.Context, articleID int64) error {
	if err := s.queries.DeleteEmbedding(ctx, articleID); err != nil {
		return fmt.Errorf("removing embedding for article %d: %w", articleID, err)
	}
	return nil
}
