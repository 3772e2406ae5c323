package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/rag"
)

type mockArticleStore struct {
	article    *article.Article
	summaries  []article.Summary
	err        error
	lastDraft  article.Draft
	lastLimit  int32
	lastOffset int32
	deleteIDs  []int64
}

func (m *mockArticleStore) Create(_ context.Context, draft article.Draft) (*article.Article, error) {
	m.lastDraft = draft
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

func (m *mockArticleStore) GetByID(_ context.Context, id int64) (*article.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

func (m *mockArticleStore) Update(_ context.Context, id int64, markdown string, references []string, status string) (*article.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

func (m *mockArticleStore) Delete(_ context.Context, id int64) error {
	m.deleteIDs = append(m.deleteIDs, id)
	return m.err
}

func (m *mockArticleStore) List(_ context.Context, category string, limit, offset int32) ([]article.Summary, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

type mockRelatedFinder struct {
	results []rag.Related
	err     error
	lastID  int64
	lastK   int
}

func (m *mockRelatedFinder) Related(_ context.Context, articleID int64, k int) ([]rag.Related, error) {
	m.lastID = articleID
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func newArticleMux(store ArticleStore, related RelatedFinder) *http.ServeMux {
	mux := http.NewServeMux()
	NewArticleHandler(store, related, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestCreateArticle(t *testing.T) {
	store := &mockArticleStore{article: &article.Article{ID: 1, Category: "dsa", Slug: "tries", Topic: "Tries"}}
	mux := newArticleMux(store, nil)

	body := `{"category":"dsa","topic":"Tries","markdown":"# Tries"}`
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if store.lastDraft.Category != "dsa" || store.lastDraft.Topic != "Tries" {
		t.Errorf("draft = %+v", store.lastDraft)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"category":`},
		{"missing category", `{"topic":"Tries"}`},
		{"missing topic", `{"category":"dsa"}`},
		{"topic too long", `{"category":"dsa","topic":"` + strings.Repeat("x", MaxTopicLength+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockArticleStore{}
			mux := newArticleMux(store, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if store.lastDraft.Category != "" {
				t.Error("store called despite invalid request")
			}
		})
	}
}

func TestCreateArticleConflict(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{err: article.ErrDuplicate}, nil)

	body := `{"category":"dsa","topic":"Tries"}`
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCreateArticleInvalidStatus(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{err: article.ErrInvalidStatus}, nil)

	body := `{"category":"dsa","topic":"Tries","status":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{err: article.ErrNotFound}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/99", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetArticleBadID(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{}, nil)

	for _, id := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/articles/"+id, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestListArticlesParams(t *testing.T) {
	store := &mockArticleStore{summaries: []article.Summary{{ID: 1, Slug: "tries"}}}
	mux := newArticleMux(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/articles?limit=20&offset=40&category=dsa", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.lastLimit != 20 || store.lastOffset != 40 {
		t.Errorf("limit/offset = %d/%d, want 20/40", store.lastLimit, store.lastOffset)
	}

	var resp struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 || resp.Limit != 20 || resp.Offset != 40 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListArticlesDefaultLimit(t *testing.T) {
	store := &mockArticleStore{summaries: []article.Summary{}}
	mux := newArticleMux(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/articles?limit=99999", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if store.lastLimit != DefaultListLimit {
		t.Errorf("limit = %d, want default %d for out-of-range value", store.lastLimit, DefaultListLimit)
	}
}

func TestDeleteArticle(t *testing.T) {
	store := &mockArticleStore{}
	mux := newArticleMux(store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/articles/5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(store.deleteIDs) != 1 || store.deleteIDs[0] != 5 {
		t.Errorf("deleteIDs = %v", store.deleteIDs)
	}
}

func TestRelatedArticles(t *testing.T) {
	related := &mockRelatedFinder{results: []rag.Related{
		{ArticleID: 2, Category: "dsa", Slug: "graphs", Topic: "Graphs", Similarity: 0.9},
	}}
	mux := newArticleMux(&mockArticleStore{}, related)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/1/related?k=3", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if related.lastID != 1 || related.lastK != 3 {
		t.Errorf("lookup forwarded as id=%d k=%d", related.lastID, related.lastK)
	}
}

func TestRelatedArticlesNotConfigured(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/1/related", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRelatedArticlesError(t *testing.T) {
	mux := newArticleMux(&mockArticleStore{}, &mockRelatedFinder{err: errors.New("no embedding")})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/1/related", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
