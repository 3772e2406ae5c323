// Package generator produces encyclopedia articles with a genkit model.
//
// Generation is rate limited with a token bucket so bulk operations (seeding,
// ingest backfills) cannot exhaust provider quotas. The model is addressed by
// name, which lets tests register a scripted mock under the same genkit
// instance.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

const systemPrompt = `You are a technical encyclopedia writer. Write accurate,
well-structured Markdown articles. Use ## section headings, fenced code blocks
for code, and cross-reference related topics with internal links of the form
[Topic Title](/wiki/<category>/<slug>). End with a "## References" section
listing source URLs as a bullet list.`

const articlePromptFormat = `Write an encyclopedia article about %q for the %q category.
Start with a single top-level heading naming the topic. Cover the concept,
how it works, trade-offs and typical use cases. Link related topics in the
same category where natural.`

var referenceURLRE = regexp.MustCompile(`https?://[^\s)\]>"']+`)

// Result is one generated article body.
type Result struct {
	Markdown   string
	References []string
}

// Generator wraps a genkit model behind a rate limiter.
// Safe for concurrent use.
type Generator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
	maxTokens   int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// WithMaxTokens caps the generated output length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithRateLimit replaces the default limiter (one call per two seconds,
// burst of two).
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(g *Generator) { g.limiter = rate.NewLimiter(r, burst) }
}

// New creates a Generator calling the named model. logger may be nil.
func New(g *genkit.Genkit, modelName string, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	gen := &Generator{
		g:           g,
		modelName:   modelName,
		temperature: 0.7,
		maxTokens:   8192,
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 2),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(gen)
	}
	return gen
}

// Article generates the Markdown body for one topic. It blocks on the rate
// limiter before calling the model and normalizes the result (guaranteed
// top-level heading, extracted reference URLs).
func (g *Generator) Article(ctx context.Context, category, topic string) (*Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for generation slot: %w", err)
	}

	start := time.Now()
	response, err := genkit.Generate(ctx, g.g,
		ai.WithModelName(g.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(articlePromptFormat, topic, category),
		ai.WithConfig(map[string]any{
			"temperature":     g.temperature,
			"maxOutputTokens": g.maxTokens,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("generating article %s/%s: %w", category, topic, err)
	}

	markdown := strings.TrimSpace(response.Text())
	if markdown == "" {
		return nil, fmt.Errorf("model returned empty article for %s/%s", category, topic)
	}
	if !strings.HasPrefix(markdown, "#") {
		markdown = "# " + topic + "\n\n" + markdown
	}

	g.logger.Debug("article generated",
		"category", category,
		"topic", topic,
		"bytes", len(markdown),
		"elapsed", time.Since(start))

	return &Result{
		Markdown:   markdown,
		References: extractReferences(markdown),
	}, nil
}

// extractReferences pulls distinct source URLs out of the article body,
// first-occurrence order. Internal /wiki links are relative and never match.
func extractReferences(markdown string) []string {
	seen := make(map[string]bool)
	refs := []string{}
	for _, u := range referenceURLRE.FindAllString(markdown, -1) {
		u = strings.TrimRight(u, ".,;")
		if seen[u] {
			continue
		}
		seen[u] = true
		refs = append(refs, u)
	}
	return refs
}
