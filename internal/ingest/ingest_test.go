package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/log"
)

type mockCreator struct {
	drafts    []article.Draft
	createErr error
}

func (m *mockCreator) Create(_ context.Context, draft article.Draft) (*article.Article, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.drafts = append(m.drafts, draft)
	return &article.Article{
		ID:       int64(len(m.drafts)),
		Category: draft.Category,
		Topic:    draft.Topic,
		Markdown: draft.Markdown,
		Status:   draft.Status,
	}, nil
}

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Consistent Hashing Explained</title></head>
<body>
<article>
<h1>Consistent Hashing Explained</h1>
<p>Consistent hashing maps keys onto a ring so that adding a node moves only a
small fraction of keys. This matters for distributed caches where rebalancing
every key on membership change would be prohibitively expensive. The ring is
usually populated with virtual nodes to smooth the distribution of load.</p>
<p>Each physical node owns several positions on the ring, and lookups walk
clockwise to the first position at or after the key's hash. Removing a node
hands its ranges to the clockwise successors without touching the rest.</p>
</article>
</body>
</html>`

func newIngester(t *testing.T, store ArticleCreator) *Ingester {
	t.Helper()
	return New(store, log.NewNop(),
		WithLockPath(filepath.Join(t.TempDir(), "ingest.lock")))
}

func TestPageImportsDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	store := &mockCreator{}
	ing := newIngester(t, store)

	a, err := ing.Page(context.Background(), srv.URL, "distributed-systems")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	if a.Status != article.StatusDraft {
		t.Errorf("status = %q, want draft", a.Status)
	}
	if len(store.drafts) != 1 {
		t.Fatalf("stored %d drafts, want 1", len(store.drafts))
	}
	draft := store.drafts[0]
	if draft.Category != "distributed-systems" {
		t.Errorf("category = %q", draft.Category)
	}
	if !strings.Contains(draft.Topic, "Consistent Hashing") {
		t.Errorf("topic = %q, want extracted title", draft.Topic)
	}
	if !strings.HasPrefix(draft.Markdown, "# ") {
		t.Errorf("markdown missing title heading:\n%s", draft.Markdown)
	}
	if !strings.Contains(draft.Markdown, "virtual nodes") {
		t.Errorf("markdown missing body content:\n%s", draft.Markdown)
	}
	if len(draft.References) != 1 || draft.References[0] != srv.URL {
		t.Errorf("references = %v, want source URL", draft.References)
	}
}

func TestPageEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer srv.Close()

	ing := newIngester(t, &mockCreator{})
	_, err := ing.Page(context.Background(), srv.URL, "misc")
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("err = %v, want ErrEmptyContent", err)
	}
}

func TestPageFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	ing := newIngester(t, &mockCreator{})
	if _, err := ing.Page(context.Background(), srv.URL, "misc"); err == nil {
		t.Error("expected error for 404 page")
	}
}

func TestPageStoreErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	ing := newIngester(t, &mockCreator{createErr: errors.New("db down")})
	_, err := ing.Page(context.Background(), srv.URL, "misc")
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}

func TestRunsSerializedByLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "ingest.lock")

	first := New(&mockCreator{}, log.NewNop(), WithLockPath(lockPath))
	unlock, err := first.acquireLock(context.Background())
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer unlock()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	second := New(&mockCreator{}, log.NewNop(), WithLockPath(lockPath))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = second.Page(ctx, srv.URL, "misc")
	if !errors.Is(err, ErrLocked) {
		t.Errorf("err = %v, want ErrLocked", err)
	}
}
