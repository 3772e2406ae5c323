package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmaas/techwiki/internal/slug"
)

// Build modes.
const (
	// ModeBasic emits only category/topic nodes and membership edges; article
	// bodies are never fetched.
	ModeBasic = "basic"

	// ModeLinked additionally derives cross-edges from in-content links.
	ModeLinked = "linked"
)

// Node and edge kinds.
const (
	KindCategory = "category"
	KindTopic    = "topic"
	KindCross    = "cross"
)

// Defaults applied when Options fields are zero.
const (
	DefaultMaxCrossEdges = 1500
	DefaultCacheTTL      = 5 * time.Minute
)

// Node is a vertex of the knowledge graph. Ids derive deterministically from
// the case-normalized keys, so repeated builds produce identical ids.
type Node struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	Category  string `json:"category,omitempty"`
	Slug      string `json:"slug,omitempty"`
	ArticleID int64  `json:"articleId,omitempty"`
}

// Edge connects two nodes. Type is KindCategory for category→topic
// membership and KindCross for content-derived links between topics.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Payload is one built graph. Node and edge slices preserve first-insertion
// order.
type Payload struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// CorpusArticle is one row of the corpus snapshot the builder walks.
// Markdown is populated only for linked-mode builds.
type CorpusArticle struct {
	ID       int64
	Category string
	Slug     string
	Topic    string
	Markdown string
}

// CorpusReader supplies the article corpus: non-draft articles ordered by
// views descending then updatedAt descending, optionally capped at limit
// rows (limit <= 0 means no cap). Implementations fetch markdown only when
// includeMarkdown is set; basic-mode builds stay cheap that way.
type CorpusReader interface {
	Corpus(ctx context.Context, includeMarkdown bool, limit int) ([]CorpusArticle, error)
}

// Options selects what to build. Zero values fall back to the documented
// defaults (mode linked, budget DefaultMaxCrossEdges, TTL DefaultCacheTTL,
// no row limit).
type Options struct {
	Mode          string
	MaxCrossEdges int
	Limit         int
	CacheTTL      time.Duration
}

func (o Options) normalized() Options {
	if o.Mode != ModeBasic {
		o.Mode = ModeLinked
	}
	if o.MaxCrossEdges <= 0 {
		o.MaxCrossEdges = DefaultMaxCrossEdges
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return o
}

// cacheKey serializes every parameter that affects the built payload. The
// TTL is deliberately excluded: it governs the slot lifetime, not the output.
func (o Options) cacheKey() string {
	return fmt.Sprintf("mode=%s&maxCrossEdges=%d&limit=%d", o.Mode, o.MaxCrossEdges, o.Limit)
}

type cacheEntry struct {
	key       string
	expiresAt time.Time
	payload   *Payload
}

// Builder assembles graph payloads and owns the single cache slot.
// It is safe for concurrent use.
type Builder struct {
	corpus CorpusReader
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	cached *cacheEntry
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the builder's time source. Test use.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a graph builder over the given corpus reader.
// logger may be nil.
func NewBuilder(corpus CorpusReader, logger *slog.Logger, opts ...BuilderOption) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{
		corpus: corpus,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the graph for the given options, serving a cached payload
// when one exists for the same parameters and has not expired. A rebuild
// overwrites the cache slot whole; there is no coordination between
// concurrent rebuilds because recomputation is idempotent.
func (b *Builder) Build(ctx context.Context, opts Options) (*Payload, error) {
	opts = opts.normalized()
	key := opts.cacheKey()

	b.mu.Lock()
	if b.cached != nil && b.cached.key == key && b.now().Before(b.cached.expiresAt) {
		payload := b.cached.payload
		b.mu.Unlock()
		return payload, nil
	}
	b.mu.Unlock()

	payload, err := b.build(ctx, opts)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.cached = &cacheEntry{key: key, expiresAt: b.now().Add(opts.CacheTTL), payload: payload}
	b.mu.Unlock()

	b.logger.Debug("graph rebuilt",
		"mode", opts.Mode,
		"nodes", len(payload.Nodes),
		"edges", len(payload.Edges))
	return payload, nil
}

func (b *Builder) build(ctx context.Context, opts Options) (*Payload, error) {
	includeCross := opts.Mode == ModeLinked

	rows, err := b.corpus.Corpus(ctx, includeCross, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("reading graph corpus: %w", err)
	}

	payload := &Payload{Nodes: []Node{}, Edges: []Edge{}}
	categorySeen := make(map[string]bool)
	topicSeen := make(map[string]bool)
	edgeSeen := make(map[string]bool)

	for _, row := range rows {
		category := strings.ToLower(row.Category)
		topicSlug := strings.ToLower(row.Slug)

		categoryID := "cat:" + category
		if !categorySeen[category] {
			payload.Nodes = append(payload.Nodes, Node{
				ID:    categoryID,
				Label: slug.Title(category),
				Type:  KindCategory,
				Slug:  category,
			})
			categorySeen[category] = true
		}

		topicKey := category + ":" + topicSlug
		topicID := "topic:" + topicKey
		if !topicSeen[topicKey] {
			payload.Nodes = append(payload.Nodes, Node{
				ID:        topicID,
				Label:     row.Topic,
				Type:      KindTopic,
				Category:  category,
				Slug:      topicSlug,
				ArticleID: row.ID,
			})
			topicSeen[topicKey] = true
		}

		edgeKey := categoryID + "->" + topicID
		if !edgeSeen[edgeKey] {
			payload.Edges = append(payload.Edges, Edge{
				From: categoryID,
				To:   topicID,
				Type: KindCategory,
			})
			edgeSeen[edgeKey] = true
		}
	}

	if includeCross {
		addCrossEdges(payload, rows, topicSeen, opts.MaxCrossEdges)
	}

	return payload, nil
}

// addCrossEdges derives topic→topic edges from in-content links. Unresolved
// targets and self-references are dropped silently; the budget is global
// across the whole build, not per article.
func addCrossEdges(payload *Payload, rows []CorpusArticle, topicSeen map[string]bool, maxCrossEdges int) {
	crossSeen := make(map[string]bool)
	crossCount := 0

	for _, row := range rows {
		if crossCount >= maxCrossEdges {
			break
		}

		sourceKey := strings.ToLower(row.Category) + ":" + strings.ToLower(row.Slug)
		if !topicSeen[sourceKey] {
			continue
		}
		sourceID := "topic:" + sourceKey

		for _, link := range ExtractLinks(row.Markdown) {
			if crossCount >= maxCrossEdges {
				break
			}
			targetKey := link.Category + ":" + link.Slug
			if !topicSeen[targetKey] || targetKey == sourceKey {
				continue
			}
			edgeKey := sourceID + "->topic:" + targetKey
			if crossSeen[edgeKey] {
				continue
			}
			payload.Edges = append(payload.Edges, Edge{
				From: sourceID,
				To:   "topic:" + targetKey,
				Type: KindCross,
			})
			crossSeen[edgeKey] = true
			crossCount++
		}
	}
}
