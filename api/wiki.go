package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
)

// WikiService serves articles, generating them on a miss.
type WikiService interface {
	GetOrGenerate(ctx context.Context, category, slug string) (*article.Article, bool, error)
}

// WikiHandler serves GET /api/wiki/{category}/{slug}.
type WikiHandler struct {
	service WikiService
	logger  log.Logger
}

// NewWikiHandler creates a wiki handler.
func NewWikiHandler(service WikiService, logger log.Logger) *WikiHandler {
	return &WikiHandler{service: service, logger: logger}
}

// RegisterRoutes registers wiki routes on the given mux.
func (h *WikiHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/wiki/{category}/{slug}", h.get)
}

func (h *WikiHandler) get(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	slug := r.PathValue("slug")

	a, generated, err := h.service.GetOrGenerate(r.Context(), category, slug)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.logger.Error("wiki lookup failed", "category", category, "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "wiki_failed", "failed to load article")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"article":   a,
		"generated": generated,
	})
}
