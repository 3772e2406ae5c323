// Package ingest imports external web content as draft articles.
//
// A run fetches one page or crawls a site section, extracts the readable
// content, converts it to Markdown and stores the result as a draft for
// review. Runs are serialized with a file lock so concurrent invocations
// (CLI and server side by side) cannot double-import.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"github.com/gofrs/flock"

	"github.com/dmaas/techwiki/internal/article"
)

// DefaultUserAgent identifies ingest traffic to origin servers.
const DefaultUserAgent = "techwiki-ingest/1.0"

// Sentinel errors.
var (
	ErrLocked       = errors.New("another ingest run is in progress")
	ErrEmptyContent = errors.New("no readable content extracted")
)

// ArticleCreator is the slice of the article store the ingester needs.
type ArticleCreator interface {
	Create(ctx context.Context, draft article.Draft) (*article.Article, error)
}

// Ingester imports web pages as draft articles. Safe for concurrent use;
// the file lock serializes actual runs.
type Ingester struct {
	store       ArticleCreator
	logger      *slog.Logger
	userAgent   string
	parallelism int
	lockPath    string
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithUserAgent overrides the crawl user agent.
func WithUserAgent(ua string) Option {
	return func(i *Ingester) { i.userAgent = ua }
}

// WithParallelism caps concurrent fetches during a crawl.
func WithParallelism(n int) Option {
	return func(i *Ingester) { i.parallelism = n }
}

// WithLockPath overrides where the run lock file lives.
func WithLockPath(path string) Option {
	return func(i *Ingester) { i.lockPath = path }
}

// New creates an Ingester. logger may be nil.
func New(store ArticleCreator, logger *slog.Logger, opts ...Option) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	ing := &Ingester{
		store:       store,
		logger:      logger,
		userAgent:   DefaultUserAgent,
		parallelism: 2,
		lockPath:    filepath.Join(os.TempDir(), "techwiki-ingest.lock"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Page imports a single page as a draft article in the given category.
func (i *Ingester) Page(ctx context.Context, rawURL, category string) (*article.Article, error) {
	unlock, err := i.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return i.importPage(ctx, rawURL, category)
}

// Crawl imports up to maxPages same-host pages reachable from startURL as
// draft articles. Pages that fail extraction are skipped, not fatal.
func (i *Ingester) Crawl(ctx context.Context, startURL, category string, maxPages int) ([]*article.Article, error) {
	if maxPages <= 0 {
		maxPages = 10
	}

	unlock, err := i.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parsing start URL: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(i.userAgent),
		colly.AllowedDomains(start.Hostname()),
		colly.MaxDepth(2),
		colly.Async(true),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: i.parallelism,
		Delay:       200 * time.Millisecond,
	}); err != nil {
		return nil, fmt.Errorf("configuring crawl limits: %w", err)
	}

	var (
		imported []*article.Article
		failures []string
		visited  int
	)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if visited >= maxPages {
			return
		}
		_ = e.Request.Visit(e.Request.AbsoluteURL(e.Attr("href")))
	})

	c.OnResponse(func(r *colly.Response) {
		if visited >= maxPages || ctx.Err() != nil {
			return
		}
		visited++

		a, err := i.storePage(ctx, r.Request.URL, string(r.Body), category)
		if err != nil {
			i.logger.Warn("skipping page", "url", r.Request.URL.String(), "error", err)
			failures = append(failures, r.Request.URL.String())
			return
		}
		imported = append(imported, a)
	})

	if err := c.Visit(startURL); err != nil {
		return nil, fmt.Errorf("starting crawl at %s: %w", startURL, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return imported, err
	}

	i.logger.Info("crawl finished",
		"start", startURL,
		"imported", len(imported),
		"skipped", len(failures))
	return imported, nil
}

func (i *Ingester) importPage(ctx context.Context, rawURL, category string) (*article.Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	c := colly.NewCollector(colly.UserAgent(i.userAgent))

	var (
		body     string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) { body = string(r.Body) })
	c.OnError(func(_ *colly.Response, err error) { fetchErr = err })

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, fetchErr)
	}

	return i.storePage(ctx, pageURL, body, category)
}

func (i *Ingester) storePage(ctx context.Context, pageURL *url.URL, rawHTML, category string) (*article.Article, error) {
	extracted, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting readable content: %w", err)
	}

	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		title = pageTitle(rawHTML)
	}
	if title == "" || strings.TrimSpace(extracted.Content) == "" {
		return nil, ErrEmptyContent
	}

	markdown, err := Markdown(extracted.Content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, ErrEmptyContent
	}
	markdown = "# " + title + "\n\n" + markdown

	a, err := i.store.Create(ctx, article.Draft{
		Category:   category,
		Topic:      title,
		Markdown:   markdown,
		References: []string{pageURL.String()},
		Status:     article.StatusDraft,
	})
	if err != nil {
		return nil, fmt.Errorf("storing imported page: %w", err)
	}

	i.logger.Info("page imported", "url", pageURL.String(), "article_id", a.ID)
	return a, nil
}

// pageTitle falls back to the document <title> when readability finds none.
func pageTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (i *Ingester) acquireLock(ctx context.Context) (func(), error) {
	lock := flock.New(i.lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, 200*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			i.logger.Warn("failed to release ingest lock", "error", err)
		}
	}, nil
}
