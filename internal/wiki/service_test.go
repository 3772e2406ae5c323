package wiki

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/generator"
	"github.com/dmaas/techwiki/internal/log"
)

type mockStore struct {
	articles map[string]*article.Article

	getCalls    int
	createCalls int
	viewCalls   int

	createErr error
	lastDraft article.Draft
}

func newMockStore() *mockStore {
	return &mockStore{articles: make(map[string]*article.Article)}
}

func (m *mockStore) Get(_ context.Context, category, slug string) (*article.Article, error) {
	m.getCalls++
	if a, ok := m.articles[category+"/"+slug]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, article.ErrNotFound
}

func (m *mockStore) Create(_ context.Context, draft article.Draft) (*article.Article, error) {
	m.createCalls++
	m.lastDraft = draft
	if m.createErr != nil {
		return nil, m.createErr
	}
	a := &article.Article{
		ID:         int64(len(m.articles) + 1),
		Category:   draft.Category,
		Topic:      draft.Topic,
		Slug:       strings.ToLower(strings.ReplaceAll(draft.Topic, " ", "-")),
		Markdown:   draft.Markdown,
		References: draft.References,
		Status:     draft.Status,
	}
	m.articles[a.Category+"/"+a.Slug] = a
	return a, nil
}

func (m *mockStore) IncrementViews(_ context.Context, id int64) (int64, error) {
	m.viewCalls++
	for _, a := range m.articles {
		if a.ID == id {
			a.Views++
			return a.Views, nil
		}
	}
	return 0, article.ErrNotFound
}

type mockGenerator struct {
	result    *generator.Result
	err       error
	callCount int
}

func (m *mockGenerator) Article(_ context.Context, _, topic string) (*generator.Result, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &generator.Result{Markdown: "# " + topic + "\n\nGenerated."}, nil
}

func TestGetOrGenerateServesStoredArticle(t *testing.T) {
	store := newMockStore()
	store.articles["dsa/graphs"] = &article.Article{ID: 1, Category: "dsa", Slug: "graphs", Topic: "Graphs"}
	gen := &mockGenerator{}
	svc := New(store, gen, log.NewNop())

	a, generated, err := svc.GetOrGenerate(context.Background(), "dsa", "graphs")
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if generated {
		t.Error("generated = true for stored article")
	}
	if gen.callCount != 0 {
		t.Errorf("generator called %d times for stored article", gen.callCount)
	}
	if a.Views != 1 {
		t.Errorf("views = %d, want bump to 1", a.Views)
	}
}

func TestGetOrGenerateFillsMiss(t *testing.T) {
	store := newMockStore()
	gen := &mockGenerator{result: &generator.Result{
		Markdown:   "# Hash Tables\n\nBuckets.",
		References: []string{"https://example.com"},
	}}
	svc := New(store, gen, log.NewNop())

	a, generated, err := svc.GetOrGenerate(context.Background(), "dsa", "hash-tables")
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if !generated {
		t.Error("generated = false for miss")
	}
	if gen.callCount != 1 {
		t.Errorf("generator called %d times, want 1", gen.callCount)
	}
	if store.lastDraft.Topic != "Hash Tables" {
		t.Errorf("draft topic = %q, want title derived from slug", store.lastDraft.Topic)
	}
	if store.lastDraft.Status != article.StatusPublished {
		t.Errorf("draft status = %q, want published", store.lastDraft.Status)
	}
	if a.Markdown != "# Hash Tables\n\nBuckets." {
		t.Errorf("markdown = %q", a.Markdown)
	}
	if a.Views != 0 {
		t.Errorf("views = %d, want 0 for fresh article", a.Views)
	}
}

func TestGetOrGenerateLosesRaceGracefully(t *testing.T) {
	store := newMockStore()
	store.createErr = article.ErrDuplicate
	gen := &mockGenerator{}

	// The winner's article appears between our Get miss and Create.
	winner := &article.Article{ID: 9, Category: "dsa", Slug: "tries", Topic: "Tries", Markdown: "winner"}
	firstGet := true
	svcStore := &racingStore{mockStore: store, onMiss: func() {
		if firstGet {
			store.articles["dsa/tries"] = winner
			firstGet = false
		}
	}}
	svc := New(svcStore, gen, log.NewNop())

	a, generated, err := svc.GetOrGenerate(context.Background(), "dsa", "tries")
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if generated {
		t.Error("generated = true, want false when losing the race")
	}
	if a.Markdown != "winner" {
		t.Errorf("markdown = %q, want the winner's article", a.Markdown)
	}
}

type racingStore struct {
	*mockStore
	onMiss func()
}

func (r *racingStore) Get(ctx context.Context, category, slug string) (*article.Article, error) {
	a, err := r.mockStore.Get(ctx, category, slug)
	if err != nil && r.onMiss != nil {
		r.onMiss()
	}
	return a, err
}

func TestGetOrGeneratePropagatesGeneratorError(t *testing.T) {
	store := newMockStore()
	gen := &mockGenerator{err: errors.New("model unavailable")}
	svc := New(store, gen, log.NewNop())

	_, _, err := svc.GetOrGenerate(context.Background(), "dsa", "heaps")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("err = %v, want wrapped generator error", err)
	}
	if store.createCalls != 0 {
		t.Error("store.Create called despite generation failure")
	}
}

func TestGetOrGenerateViewBumpFailureNonFatal(t *testing.T) {
	store := newMockStore()
	// Article present in map but IncrementViews will miss its id.
	store.articles["dsa/graphs"] = &article.Article{ID: 0, Category: "dsa", Slug: "graphs"}
	svc := New(&brokenViewStore{store}, &mockGenerator{}, log.NewNop())

	a, _, err := svc.GetOrGenerate(context.Background(), "dsa", "graphs")
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if a == nil {
		t.Fatal("article dropped because of view-bump failure")
	}
}

type brokenViewStore struct {
	*mockStore
}

func (b *brokenViewStore) IncrementViews(context.Context, int64) (int64, error) {
	return 0, errors.New("counter offline")
}
