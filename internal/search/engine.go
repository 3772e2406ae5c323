package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// MaxResults caps the number of search hits returned for any query.
const MaxResults = 25

// Highlight markers wrapped around matched fragments in snippets.
const (
	HighlightStart = "<mark>"
	HighlightEnd   = "</mark>"
)

// Result is one ranked search hit.
type Result struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Slug      string    `json:"slug"`
	Topic     string    `json:"topic"`
	UpdatedAt time.Time `json:"updatedAt"`
	Snippet   string    `json:"snippet"`
}

// Querier is the storage capability the engine needs. Defined here, by the
// consumer, so tests can substitute a stub and assert on storage access.
type Querier interface {
	// SearchArticles executes tsQuery against the inverted index and returns
	// hits ordered by relevance (ties broken by ascending article id).
	SearchArticles(ctx context.Context, tsQuery string, limit int32) ([]Result, error)
}

// Engine ranks articles for free-text queries.
type Engine struct {
	queries Querier
	logger  *slog.Logger
}

// NewEngine creates a search engine backed by the given querier.
// logger may be nil.
func NewEngine(queries Querier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{queries: queries, logger: logger}
}

// Search returns up to MaxResults ranked hits for a raw query string.
//
// A query that normalizes to zero tokens returns an empty result without
// touching storage; "no results" is never an error. Storage failures
// propagate to the caller unwrapped into this package's context.
func (e *Engine) Search(ctx context.Context, query string) ([]Result, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []Result{}, nil
	}

	tsQuery := tsQueryFromTokens(tokens)

	results, err := e.queries.SearchArticles(ctx, tsQuery, MaxResults)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", tsQuery, err)
	}

	// Defensive cap; the querier already applies LIMIT but the contract is
	// ours to keep.
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	// A headline without a highlight means the match was in a field other
	// than body; the contract is an empty snippet in that case.
	for i := range results {
		if !strings.Contains(results[i].Snippet, HighlightStart) {
			results[i].Snippet = ""
		}
	}

	e.logger.Debug("search executed", "query", tsQuery, "hits", len(results))
	return results, nil
}
