package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/search"
)

type stubSearcher struct {
	results   []search.Result
	err       error
	lastQuery string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	s.lastQuery = query
	return s.results, s.err
}

type stubOpener struct {
	article   *article.Article
	generated bool
	err       error
}

func (s *stubOpener) GetOrGenerate(context.Context, string, string) (*article.Article, bool, error) {
	return s.article, s.generated, s.err
}

func newTestModel(t *testing.T, searcher Searcher, opener ArticleOpener) *Model {
	t.Helper()
	if searcher == nil {
		searcher = &stubSearcher{}
	}
	if opener == nil {
		opener = &stubOpener{}
	}
	m, err := New(context.Background(), searcher, opener)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNewValidation(t *testing.T) {
	if _, err := New(context.Background(), nil, &stubOpener{}); err == nil {
		t.Error("New() with nil searcher should fail")
	}
	if _, err := New(context.Background(), &stubSearcher{}, nil); err == nil {
		t.Error("New() with nil opener should fail")
	}
	//nolint:staticcheck // verifying the nil-context guard
	if _, err := New(nil, &stubSearcher{}, &stubOpener{}); err == nil {
		t.Error("New() with nil ctx should fail")
	}
}

func TestSubmitRunsSearch(t *testing.T) {
	searcher := &stubSearcher{results: []search.Result{
		{ID: 1, Category: "dsa", Slug: "graphs", Topic: "Graphs"},
	}}
	m := newTestModel(t, searcher, nil)

	m.input.SetValue("graph theory")
	_, cmd := m.handleSubmit()
	if cmd == nil {
		t.Fatal("handleSubmit() returned nil cmd")
	}

	msg := cmd()
	done, ok := msg.(searchDoneMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want searchDoneMsg", msg)
	}
	if searcher.lastQuery != "graph theory" {
		t.Errorf("query forwarded as %q", searcher.lastQuery)
	}

	m.Update(done)
	if len(m.results) != 1 || m.cursor != 0 {
		t.Errorf("results = %d, cursor = %d", len(m.results), m.cursor)
	}
	if m.lastQuery != "graph theory" {
		t.Errorf("lastQuery = %q", m.lastQuery)
	}
}

func TestSubmitEmptyQueryIsNoop(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.input.SetValue("   ")
	_, cmd := m.handleSubmit()
	if cmd != nil {
		t.Error("blank query should not run a search")
	}
}

func TestSearchErrorSetsStatus(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.Update(searchDoneMsg{query: "x", err: errors.New("db down")})
	if !strings.Contains(m.status, "search failed") {
		t.Errorf("status = %q", m.status)
	}
}

func TestNoResultsStatus(t *testing.T) {
	m := newTestModel(t, nil, nil)

	m.Update(searchDoneMsg{query: "zanzibar", results: []search.Result{}})
	if !strings.Contains(m.status, "no results") {
		t.Errorf("status = %q", m.status)
	}
}

func TestOpenTransitionsToReading(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.state = StateLoading

	a := &article.Article{ID: 3, Category: "dsa", Slug: "tries", Topic: "Tries", Markdown: "# Tries"}
	m.Update(openDoneMsg{article: a, generated: true})

	if m.state != StateReading {
		t.Fatalf("state = %v, want StateReading", m.state)
	}
	if m.current == nil || m.current.ID != 3 || !m.generated {
		t.Errorf("current = %+v generated = %v", m.current, m.generated)
	}
}

func TestOpenErrorReturnsToSearch(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.state = StateLoading

	m.Update(openDoneMsg{err: errors.New("model unavailable")})

	if m.state != StateSearch {
		t.Fatalf("state = %v, want StateSearch", m.state)
	}
	if !strings.Contains(m.status, "load failed") {
		t.Errorf("status = %q", m.status)
	}
}

func TestOpenCancellationStatus(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.state = StateLoading

	m.Update(openDoneMsg{err: context.Canceled})

	if m.state != StateSearch || m.status != "(canceled)" {
		t.Errorf("state = %v status = %q", m.state, m.status)
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.history = []string{"first", "second"}
	m.historyIdx = len(m.history)

	m.navigateHistory(-1)
	if got := m.input.Value(); got != "second" {
		t.Errorf("input = %q, want second", got)
	}
	m.navigateHistory(-1)
	if got := m.input.Value(); got != "first" {
		t.Errorf("input = %q, want first", got)
	}
	m.navigateHistory(-1)
	if got := m.input.Value(); got != "first" {
		t.Errorf("input = %q, history should clamp at oldest", got)
	}
	m.navigateHistory(1)
	m.navigateHistory(1)
	if got := m.input.Value(); got != "" {
		t.Errorf("input = %q, want empty past newest", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	m := newTestModel(t, &stubSearcher{results: []search.Result{}}, nil)

	for range maxHistory + 10 {
		m.input.SetValue("q")
		m.handleSubmit()
	}
	if len(m.history) != maxHistory {
		t.Errorf("history length = %d, want %d", len(m.history), maxHistory)
	}
}

func TestStripMarkers(t *testing.T) {
	in := "a <mark>b</mark> c"
	if got := stripMarkers(in); got != "a b c" {
		t.Errorf("stripMarkers(%q) = %q", in, got)
	}
}
