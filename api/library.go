package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmaas/techwiki/internal/library"
	"github.com/dmaas/techwiki/internal/log"
)

// LibraryStore is the slice of the library store the handler needs.
type LibraryStore interface {
	AddBookmark(ctx context.Context, userID, articleID int64) (*library.Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, articleID int64) error
	Bookmarks(ctx context.Context, userID int64) ([]library.Bookmark, error)
	CreateList(ctx context.Context, userID int64, name string) (*library.ReadingList, error)
	DeleteList(ctx context.Context, listID uuid.UUID) error
	Lists(ctx context.Context, userID int64) ([]library.ReadingList, error)
	AddToList(ctx context.Context, listID uuid.UUID, articleID int64) (*library.ListItem, error)
	RemoveFromList(ctx context.Context, listID uuid.UUID, articleID int64) error
	ListItems(ctx context.Context, listID uuid.UUID) ([]library.ListItem, error)
}

// LibraryHandler serves bookmark and reading-list endpoints. User identity
// comes from the X-User-ID header; there is no authentication layer in
// front of it yet.
type LibraryHandler struct {
	store  LibraryStore
	logger log.Logger
}

// NewLibraryHandler creates a library handler.
func NewLibraryHandler(store LibraryStore, logger log.Logger) *LibraryHandler {
	return &LibraryHandler{store: store, logger: logger}
}

// RegisterRoutes registers library routes on the given mux.
func (h *LibraryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/bookmarks", h.listBookmarks)
	mux.HandleFunc("POST /api/bookmarks", h.addBookmark)
	mux.HandleFunc("DELETE /api/bookmarks/{articleID}", h.removeBookmark)
	mux.HandleFunc("GET /api/lists", h.lists)
	mux.HandleFunc("POST /api/lists", h.createList)
	mux.HandleFunc("DELETE /api/lists/{listID}", h.deleteList)
	mux.HandleFunc("GET /api/lists/{listID}/items", h.listItems)
	mux.HandleFunc("POST /api/lists/{listID}/items", h.addToList)
	mux.HandleFunc("DELETE /api/lists/{listID}/items/{articleID}", h.removeFromList)
}

func (h *LibraryHandler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := userID(w, r)
	if !ok {
		return
	}

	bookmarks, err := h.store.Bookmarks(r.Context(), userID)
	if err != nil {
		h.logger.Error("bookmark list failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": bookmarks})
}

func (h *LibraryHandler) addBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		ArticleID int64 `json:"articleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ArticleID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "articleId is required")
		return
	}

	b, err := h.store.AddBookmark(r.Context(), userID, req.ArticleID)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrAlreadyBookmarked):
			writeError(w, http.StatusConflict, "duplicate", "article already bookmarked")
		case errors.Is(err, library.ErrUnknownArticle):
			writeError(w, http.StatusNotFound, "not_found", "article not found")
		default:
			h.logger.Error("bookmark add failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "add_failed", "failed to add bookmark")
		}
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *LibraryHandler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := userID(w, r)
	if !ok {
		return
	}
	articleID, ok := pathInt64(w, r, "articleID")
	if !ok {
		return
	}

	if err := h.store.RemoveBookmark(r.Context(), userID, articleID); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bookmark not found")
			return
		}
		h.logger.Error("bookmark remove failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "remove_failed", "failed to remove bookmark")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) lists(w http.ResponseWriter, r *http.Request) {
	userID, ok := userID(w, r)
	if !ok {
		return
	}

	lists, err := h.store.Lists(r.Context(), userID)
	if err != nil {
		h.logger.Error("list listing failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list reading lists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

func (h *LibraryHandler) createList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	l, err := h.store.CreateList(r.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, library.ErrEmptyListName) {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		h.logger.Error("list create failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "create_failed", "failed to create reading list")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *LibraryHandler) deleteList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathUUID(w, r, "listID")
	if !ok {
		return
	}

	if err := h.store.DeleteList(r.Context(), listID); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "reading list not found")
			return
		}
		h.logger.Error("list delete failed", "list_id", listID, "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete reading list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) listItems(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathUUID(w, r, "listID")
	if !ok {
		return
	}

	items, err := h.store.ListItems(r.Context(), listID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "reading list not found")
			return
		}
		h.logger.Error("list items failed", "list_id", listID, "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *LibraryHandler) addToList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathUUID(w, r, "listID")
	if !ok {
		return
	}

	var req struct {
		ArticleID int64 `json:"articleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ArticleID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "articleId is required")
		return
	}

	item, err := h.store.AddToList(r.Context(), listID, req.ArticleID)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrAlreadyInList):
			writeError(w, http.StatusConflict, "duplicate", "article already in list")
		case errors.Is(err, library.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "reading list or article not found")
		default:
			h.logger.Error("list add failed", "list_id", listID, "error", err)
			writeError(w, http.StatusInternalServerError, "add_failed", "failed to add to list")
		}
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *LibraryHandler) removeFromList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathUUID(w, r, "listID")
	if !ok {
		return
	}
	articleID, ok := pathInt64(w, r, "articleID")
	if !ok {
		return
	}

	if err := h.store.RemoveFromList(r.Context(), listID, articleID); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "list item not found")
			return
		}
		h.logger.Error("list remove failed", "list_id", listID, "error", err)
		writeError(w, http.StatusInternalServerError, "remove_failed", "failed to remove from list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
