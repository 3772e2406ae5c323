// Package api exposes the encyclopedia over HTTP REST endpoints.
//
// Endpoints:
//
//	GET    /health                               liveness probe
//	GET    /ready                                readiness probe (DB ping)
//	GET    /api/search?q=                        full-text search
//	GET    /api/graph                            knowledge graph
//	GET    /api/wiki/{category}/{slug}           get-or-generate article
//	POST   /api/articles                         create article
//	GET    /api/articles                         list articles
//	GET    /api/articles/{id}                    article by id
//	PUT    /api/articles/{id}                    update article
//	DELETE /api/articles/{id}                    delete article
//	GET    /api/articles/{id}/related            related articles (embeddings)
//	GET    /api/articles/{id}/comments           comments
//	POST   /api/articles/{id}/comments           add comment
//	POST   /api/comments/{commentID}/moderate    moderate comment
//	POST   /api/users/{userID}/ban               ban user
//	DELETE /api/users/{userID}/ban               unban user
//	POST   /api/run                              sandboxed code execution
//	GET/POST/DELETE /api/bookmarks…, /api/lists… library
//
// File structure mirrors the endpoints: one handler type per concern, all
// registered on a single stdlib ServeMux with method patterns.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmaas/techwiki/internal/log"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8087"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because article generation happens inside a
	// request.
	WriteTimeout = 120 * time.Second

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Deps carries everything the server needs. Nil optional fields disable the
// matching endpoints with a 503 instead of failing startup.
type Deps struct {
	Pool     *pgxpool.Pool
	Searcher Searcher
	Graph    GraphBuilder
	Wiki     WikiService
	Articles ArticleStore
	Related  RelatedFinder
	Runner   CodeRunner
	Library  LibraryStore
	Collab   CollabStore
	Logger   log.Logger
}

// Server is the HTTP server for the REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	NewHealthHandler(deps.Pool, deps.Logger).RegisterRoutes(mux)
	NewSearchHandler(deps.Searcher, deps.Logger).RegisterRoutes(mux)
	NewGraphHandler(deps.Graph, deps.Logger).RegisterRoutes(mux)
	NewWikiHandler(deps.Wiki, deps.Logger).RegisterRoutes(mux)
	NewArticleHandler(deps.Articles, deps.Related, deps.Logger).RegisterRoutes(mux)
	if deps.Runner != nil {
		NewRunHandler(deps.Runner, deps.Logger).RegisterRoutes(mux)
	}
	if deps.Library != nil {
		NewLibraryHandler(deps.Library, deps.Logger).RegisterRoutes(mux)
	}
	if deps.Collab != nil {
		NewCollabHandler(deps.Collab, deps.Logger).RegisterRoutes(mux)
	}

	return &Server{mux: mux, logger: deps.Logger}
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
