package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmaas/techwiki/db"
	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/collab"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/generator"
	"github.com/dmaas/techwiki/internal/graph"
	"github.com/dmaas/techwiki/internal/ingest"
	"github.com/dmaas/techwiki/internal/library"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/observability"
	"github.com/dmaas/techwiki/internal/rag"
	"github.com/dmaas/techwiki/internal/runner"
	"github.com/dmaas/techwiki/internal/search"
	"github.com/dmaas/techwiki/internal/wiki"
)

// Setup creates and initializes the full application, including the AI
// provider. Returns an App with embedded cleanup; call Close to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a, err := SetupStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				a.Logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelShutdown, err = observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OtelEndpoint,
		Environment: cfg.Environment,
		ServiceName: observability.DefaultServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	g, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Embedder = googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if a.Embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}

	a.Generator = generator.New(g, qualifiedModelName(cfg),
		a.Logger.With("component", "generator"),
		generator.WithTemperature(float64(cfg.Temperature)),
		generator.WithMaxTokens(cfg.MaxTokens),
	)
	a.Wiki = wiki.New(a.Articles, a.Generator, a.Logger.With("component", "wiki"))
	a.RAG = rag.New(rag.NewDB(a.Pool), a.Embedder, a.Logger.With("component", "rag"))

	return a, nil
}

// SetupStorage initializes configuration-driven components that only need the
// database: the pool (after migrations), search, articles, graph, library,
// collab, runner, and ingest. CLI commands that never touch the AI provider
// use this path so they start without credentials.
func SetupStorage(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.dbCleanup = dbCleanup

	index := search.NewIndex(logger.With("component", "search"))
	a.Search = search.NewEngine(search.NewStore(pool), logger.With("component", "search"))
	a.Articles = article.NewStore(pool, index, logger.With("component", "articles"))
	a.Graph = graph.NewBuilder(a.Articles, logger.With("component", "graph"))
	a.Library = library.New(pool, logger.With("component", "library"))
	a.Collab = collab.New(pool, logger.With("component", "collab"))

	if cfg.RunnerURL != "" {
		a.Runner = runner.New(cfg.RunnerURL,
			logger.With("component", "runner"),
			runner.WithHTTPClient(&http.Client{Timeout: cfg.RunnerTimeout}),
		)
	}

	a.Ingester = ingest.New(a.Articles,
		logger.With("component", "ingest"),
		ingest.WithUserAgent(cfg.IngestUserAgent),
		ingest.WithParallelism(cfg.IngestParallelism),
	)

	return a, nil
}

// provideGenkit initializes genkit with the configured AI provider. Both
// supported providers ride the Google AI plugin; the distinction only selects
// which API key environment variable the plugin reads.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	slog.Info("initialized genkit", "provider", cfg.Provider, "model", cfg.ModelName)
	return g, nil
}

// qualifiedModelName prefixes the configured model with the provider
// namespace genkit expects, unless the config already qualifies it.
func qualifiedModelName(cfg *config.Config) string {
	if strings.Contains(cfg.ModelName, "/") {
		return cfg.ModelName
	}
	return "googleai/" + cfg.ModelName
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, pool.Close, nil
}

// Interface conformance for the HTTP layer.
var (
	_ wiki.ArticleStore     = (*article.Store)(nil)
	_ wiki.ArticleGenerator = (*generator.Generator)(nil)
	_ graph.CorpusReader    = (*article.Store)(nil)
)
