package api

import (
	"context"
	"net/http"

	"github.com/dmaas/techwiki/internal/graph"
	"github.com/dmaas/techwiki/internal/log"
)

// GraphBuilder builds knowledge-graph payloads.
type GraphBuilder interface {
	Build(ctx context.Context, opts graph.Options) (*graph.Payload, error)
}

// GraphHandler serves GET /api/graph.
type GraphHandler struct {
	builder GraphBuilder
	logger  log.Logger
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(builder GraphBuilder, logger log.Logger) *GraphHandler {
	return &GraphHandler{builder: builder, logger: logger}
}

// RegisterRoutes registers graph routes on the given mux.
func (h *GraphHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/graph", h.build)
}

func (h *GraphHandler) build(w http.ResponseWriter, r *http.Request) {
	opts := graph.Options{
		Mode:          r.URL.Query().Get("mode"),
		MaxCrossEdges: parseIntParam(r, "maxCrossEdges", 0, 1, 100000),
		Limit:         parseIntParam(r, "limit", 0, 1, 100000),
	}

	payload, err := h.builder.Build(r.Context(), opts)
	if err != nil {
		h.logger.Error("graph build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "graph_failed", "graph build failed")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}
