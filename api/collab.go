package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmaas/techwiki/internal/collab"
	"github.com/dmaas/techwiki/internal/log"
)

// CollabStore is the slice of the collab store the handler needs.
type CollabStore interface {
	AddComment(ctx context.Context, articleID, userID int64, body string) (*collab.Comment, error)
	Moderate(ctx context.Context, commentID uuid.UUID, status string) error
	Comments(ctx context.Context, articleID int64, includePending bool) ([]collab.Comment, error)
	BanUser(ctx context.Context, userID int64, reason string, expiresAt time.Time) error
	UnbanUser(ctx context.Context, userID int64) error
}

// CollabHandler serves comment and moderation endpoints.
type CollabHandler struct {
	store  CollabStore
	logger log.Logger
}

// NewCollabHandler creates a collab handler.
func NewCollabHandler(store CollabStore, logger log.Logger) *CollabHandler {
	return &CollabHandler{store: store, logger: logger}
}

// RegisterRoutes registers collab routes on the given mux.
func (h *CollabHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/articles/{id}/comments", h.list)
	mux.HandleFunc("POST /api/articles/{id}/comments", h.add)
	mux.HandleFunc("POST /api/comments/{commentID}/moderate", h.moderate)
	mux.HandleFunc("POST /api/users/{userID}/ban", h.ban)
	mux.HandleFunc("DELETE /api/users/{userID}/ban", h.unban)
}

func (h *CollabHandler) list(w http.ResponseWriter, r *http.Request) {
	articleID, ok := pathID(w, r)
	if !ok {
		return
	}
	includePending := r.URL.Query().Get("includePending") == "true"

	comments, err := h.store.Comments(r.Context(), articleID, includePending)
	if err != nil {
		h.logger.Error("comment list failed", "article_id", articleID, "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *CollabHandler) add(w http.ResponseWriter, r *http.Request) {
	articleID, ok := pathID(w, r)
	if !ok {
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	c, err := h.store.AddComment(r.Context(), articleID, uid, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, collab.ErrEmptyComment), errors.Is(err, collab.ErrCommentTooLong):
			writeError(w, http.StatusBadRequest, "invalid_comment", err.Error())
		case errors.Is(err, collab.ErrUserBanned):
			writeError(w, http.StatusForbidden, "banned", "user is banned from commenting")
		case errors.Is(err, collab.ErrUnknownArticle):
			writeError(w, http.StatusNotFound, "not_found", "article not found")
		default:
			h.logger.Error("comment add failed", "article_id", articleID, "error", err)
			writeError(w, http.StatusInternalServerError, "add_failed", "failed to add comment")
		}
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CollabHandler) moderate(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathUUID(w, r, "commentID")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	if err := h.store.Moderate(r.Context(), commentID, req.Status); err != nil {
		switch {
		case errors.Is(err, collab.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "comment not found")
		case errors.Is(err, collab.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be approved or rejected")
		default:
			h.logger.Error("moderation failed", "comment_id", commentID, "error", err)
			writeError(w, http.StatusInternalServerError, "moderate_failed", "failed to moderate comment")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollabHandler) ban(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}

	var req struct {
		Reason    string `json:"reason"`
		ExpiresAt string `json:"expiresAt,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "reason is required")
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "expiresAt must be RFC 3339")
			return
		}
		expiresAt = parsed
	}

	if err := h.store.BanUser(r.Context(), uid, req.Reason, expiresAt); err != nil {
		h.logger.Error("ban failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "ban_failed", "failed to ban user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollabHandler) unban(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}

	if err := h.store.UnbanUser(r.Context(), uid); err != nil {
		if errors.Is(err, collab.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user is not banned")
			return
		}
		h.logger.Error("unban failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "unban_failed", "failed to unban user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userID reads the calling user from the X-User-ID header.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-ID header is required")
		return 0, false
	}
	return id, true
}

// pathInt64 parses a positive integer path segment.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

// pathUUID parses a UUID path segment.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", name+" must be a UUID")
		return uuid.Nil, false
	}
	return v, true
}
