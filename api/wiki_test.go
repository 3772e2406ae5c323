package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
)

type mockWikiService struct {
	article      *article.Article
	generated    bool
	err          error
	lastCategory string
	lastSlug     string
}

func (m *mockWikiService) GetOrGenerate(_ context.Context, category, slug string) (*article.Article, bool, error) {
	m.lastCategory = category
	m.lastSlug = slug
	if m.err != nil {
		return nil, false, m.err
	}
	return m.article, m.generated, nil
}

func newWikiMux(s WikiService) *http.ServeMux {
	mux := http.NewServeMux()
	NewWikiHandler(s, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestWikiEndpoint(t *testing.T) {
	svc := &mockWikiService{
		article:   &article.Article{ID: 7, Category: "dsa", Slug: "hash-tables", Topic: "Hash Tables"},
		generated: true,
	}
	mux := newWikiMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/wiki/dsa/hash-tables", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastCategory != "dsa" || svc.lastSlug != "hash-tables" {
		t.Errorf("path forwarded as %q/%q", svc.lastCategory, svc.lastSlug)
	}

	var resp struct {
		Article   article.Article `json:"article"`
		Generated bool            `json:"generated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Article.ID != 7 || !resp.Generated {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWikiEndpointNotFound(t *testing.T) {
	mux := newWikiMux(&mockWikiService{err: article.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/wiki/dsa/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWikiEndpointError(t *testing.T) {
	mux := newWikiMux(&mockWikiService{err: errors.New("model unavailable")})

	req := httptest.NewRequest(http.MethodGet, "/api/wiki/dsa/graphs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
