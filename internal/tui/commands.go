package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/search"
)

// searchDoneMsg carries the outcome of a search query.
type searchDoneMsg struct {
	query   string
	results []search.Result
	err     error
}

// openStartedMsg hands the cancel function for an in-flight article load to
// the update loop.
type openStartedMsg struct {
	cancel context.CancelFunc
	doneCh <-chan openDoneMsg
}

// openDoneMsg carries a loaded (possibly freshly generated) article.
type openDoneMsg struct {
	article   *article.Article
	generated bool
	err       error
}

// runSearch executes the query off the update loop.
func (m *Model) runSearch(query string) tea.Cmd {
	ctx := m.ctx
	searcher := m.searcher
	return func() tea.Msg {
		results, err := searcher.Search(ctx, query)
		return searchDoneMsg{query: query, results: results, err: err}
	}
}

// openArticle starts an asynchronous article load. The load gets its own
// cancellable context so Esc can abandon a slow generation without tearing
// down the program context.
func (m *Model) openArticle(category, slug string) tea.Cmd {
	ctx, cancel := context.WithTimeout(m.ctx, openTimeout)
	doneCh := make(chan openDoneMsg, 1)
	opener := m.opener

	go func() {
		defer cancel()
		a, generated, err := opener.GetOrGenerate(ctx, category, slug)
		doneCh <- openDoneMsg{article: a, generated: generated, err: err}
	}()

	return func() tea.Msg {
		return openStartedMsg{cancel: cancel, doneCh: doneCh}
	}
}

// listenForOpen waits for the article load to finish.
func listenForOpen(doneCh <-chan openDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-doneCh
	}
}
