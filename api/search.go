package api

import (
	"context"
	"net/http"

	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/search"
)

// Searcher executes full-text queries.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// SearchHandler serves GET /api/search.
type SearchHandler struct {
	engine Searcher
	logger log.Logger
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(engine Searcher, logger log.Logger) *SearchHandler {
	return &SearchHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers search routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", h.search)
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.engine.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "search_failed", "search query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}
