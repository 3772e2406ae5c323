package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/rag"
)

// Article validation limits.
const (
	MaxMarkdownBytes = 1 << 20 // 1 MiB
	MaxTopicLength   = 200
	DefaultListLimit = 50
	MaxListLimit     = 500
	MaxListOffset    = 100000
	MaxRelatedK      = 20
)

// ArticleStore is the slice of the article store the handler needs.
type ArticleStore interface {
	Create(ctx context.Context, draft article.Draft) (*article.Article, error)
	GetByID(ctx context.Context, id int64) (*article.Article, error)
	Update(ctx context.Context, id int64, markdown string, references []string, status string) (*article.Article, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, category string, limit, offset int32) ([]article.Summary, error)
}

// RelatedFinder serves related-article lookups.
type RelatedFinder interface {
	Related(ctx context.Context, articleID int64, k int) ([]rag.Related, error)
}

// ArticleHandler serves the /api/articles endpoints.
type ArticleHandler struct {
	store   ArticleStore
	related RelatedFinder
	logger  log.Logger
}

// NewArticleHandler creates an article handler. related may be nil, in which
// case the related endpoint reports 503.
func NewArticleHandler(store ArticleStore, related RelatedFinder, logger log.Logger) *ArticleHandler {
	return &ArticleHandler{store: store, related: related, logger: logger}
}

// RegisterRoutes registers article routes on the given mux.
func (h *ArticleHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/articles", h.create)
	mux.HandleFunc("GET /api/articles", h.list)
	mux.HandleFunc("GET /api/articles/{id}", h.get)
	mux.HandleFunc("PUT /api/articles/{id}", h.update)
	mux.HandleFunc("DELETE /api/articles/{id}", h.delete)
	mux.HandleFunc("GET /api/articles/{id}/related", h.relatedArticles)
}

type createArticleRequest struct {
	Category   string   `json:"category"`
	Topic      string   `json:"topic"`
	Markdown   string   `json:"markdown"`
	References []string `json:"references"`
	Status     string   `json:"status"`
}

func (h *ArticleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxMarkdownBytes+4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Category == "" || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "category and topic are required")
		return
	}
	if len(req.Topic) > MaxTopicLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "topic too long")
		return
	}
	if len(req.Markdown) > MaxMarkdownBytes {
		writeError(w, http.StatusBadRequest, "invalid_request", "markdown too large")
		return
	}

	a, err := h.store.Create(r.Context(), article.Draft{
		Category:   req.Category,
		Topic:      req.Topic,
		Markdown:   req.Markdown,
		References: req.References,
		Status:     req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, article.ErrDuplicate):
			writeError(w, http.StatusConflict, "duplicate", "article already exists")
		case errors.Is(err, article.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", "unknown article status")
		default:
			h.logger.Error("article create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "create_failed", "failed to create article")
		}
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", DefaultListLimit, 1, MaxListLimit)
	offset := parseIntParam(r, "offset", 0, 0, MaxListOffset)
	category := r.URL.Query().Get("category")

	articles, err := h.store.List(r.Context(), category, int32(limit), int32(offset))
	if err != nil {
		h.logger.Error("article list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list articles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"total":    len(articles),
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *ArticleHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.logger.Error("article get failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load article")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

type updateArticleRequest struct {
	Markdown   string   `json:"markdown"`
	References []string `json:"references"`
	Status     string   `json:"status"`
}

func (h *ArticleHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateArticleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxMarkdownBytes+4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(req.Markdown) > MaxMarkdownBytes {
		writeError(w, http.StatusBadRequest, "invalid_request", "markdown too large")
		return
	}

	a, err := h.store.Update(r.Context(), id, req.Markdown, req.References, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, article.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "article not found")
		case errors.Is(err, article.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", "unknown article status")
		default:
			h.logger.Error("article update failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "update_failed", "failed to update article")
		}
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, article.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.logger.Error("article delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete article")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticleHandler) relatedArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if h.related == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "related articles not configured")
		return
	}

	k := parseIntParam(r, "k", 0, 1, MaxRelatedK)
	results, err := h.related.Related(r.Context(), id, k)
	if err != nil {
		h.logger.Error("related lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "related_failed", "failed to load related articles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articleId": id,
		"related":   results,
	})
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "article id must be a positive integer")
		return 0, false
	}
	return id, true
}
