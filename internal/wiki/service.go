// Package wiki orchestrates the read path of the encyclopedia: serve the
// stored article when one exists, generate and persist it on a miss.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/generator"
	"github.com/dmaas/techwiki/internal/slug"
)

// ArticleStore is the slice of the article store the service needs.
type ArticleStore interface {
	Get(ctx context.Context, category, articleSlug string) (*article.Article, error)
	Create(ctx context.Context, draft article.Draft) (*article.Article, error)
	IncrementViews(ctx context.Context, id int64) (int64, error)
}

// ArticleGenerator produces article bodies for cache misses.
type ArticleGenerator interface {
	Article(ctx context.Context, category, topic string) (*generator.Result, error)
}

// Service implements get-or-generate over the article store.
type Service struct {
	store  ArticleStore
	gen    ArticleGenerator
	logger *slog.Logger
}

// New creates a wiki service. logger may be nil.
func New(store ArticleStore, gen ArticleGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gen: gen, logger: logger}
}

// GetOrGenerate returns the article for category/slug, generating and
// persisting it first when missing. The boolean reports whether generation
// happened. A stored article gets its view counter bumped; a freshly
// generated one starts at zero views.
func (s *Service) GetOrGenerate(ctx context.Context, category, articleSlug string) (*article.Article, bool, error) {
	a, err := s.store.Get(ctx, category, articleSlug)
	if err == nil {
		if views, verr := s.store.IncrementViews(ctx, a.ID); verr == nil {
			a.Views = views
		} else {
			s.logger.Warn("failed to bump views", "article_id", a.ID, "error", verr)
		}
		return a, false, nil
	}
	if !errors.Is(err, article.ErrNotFound) {
		return nil, false, err
	}

	topic := slug.Title(articleSlug)
	s.logger.Info("generating missing article", "category", category, "slug", articleSlug, "topic", topic)

	result, err := s.gen.Article(ctx, category, topic)
	if err != nil {
		return nil, false, fmt.Errorf("generating %s/%s: %w", category, articleSlug, err)
	}

	created, err := s.store.Create(ctx, article.Draft{
		Category:   category,
		Topic:      topic,
		Markdown:   result.Markdown,
		References: result.References,
		Status:     article.StatusPublished,
	})
	if err == nil {
		return created, true, nil
	}

	// Lost a generation race: someone persisted the same key first. Their
	// copy wins.
	if errors.Is(err, article.ErrDuplicate) {
		existing, getErr := s.store.Get(ctx, category, articleSlug)
		if getErr != nil {
			return nil, false, fmt.Errorf("loading article after duplicate insert: %w", getErr)
		}
		return existing, false, nil
	}

	return nil, false, fmt.Errorf("persisting generated article %s/%s: %w", category, articleSlug, err)
}
