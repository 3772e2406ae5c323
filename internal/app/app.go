// Package app wires the application together: configuration, database pool,
// genkit, and every domain component, with cleanup ordered in reverse of
// construction.
package app

import (
	"context"
	"errors"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/collab"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/generator"
	"github.com/dmaas/techwiki/internal/graph"
	"github.com/dmaas/techwiki/internal/ingest"
	"github.com/dmaas/techwiki/internal/library"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/rag"
	"github.com/dmaas/techwiki/internal/runner"
	"github.com/dmaas/techwiki/internal/search"
	"github.com/dmaas/techwiki/internal/wiki"
)

// App holds the initialized application components. Create with Setup and
// release with Close.
type App struct {
	Config *config.Config
	Logger log.Logger

	Pool     *pgxpool.Pool
	Genkit   *genkit.Genkit
	Embedder ai.Embedder

	Search    *search.Engine
	Articles  *article.Store
	Graph     *graph.Builder
	Generator *generator.Generator
	Wiki      *wiki.Service
	RAG       *rag.Store
	Runner    *runner.Client
	Library   *library.Store
	Collab    *collab.Store
	Ingester  *ingest.Ingester

	otelShutdown func(context.Context) error
	dbCleanup    func()
}

// Close releases application resources in reverse construction order.
func (a *App) Close() error {
	var errs []error

	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}

	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
		a.otelShutdown = nil
	}

	return errors.Join(errs...)
}
