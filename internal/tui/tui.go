// Package tui provides the Bubble Tea terminal interface for browsing the
// encyclopedia: a search prompt, a result list, and a reading view with
// rendered Markdown.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dmaas/techwiki/internal/article"
	"github.com/dmaas/techwiki/internal/search"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateSearch  State = iota // Awaiting a search query
	StateLoading              // Fetching or generating an article
	StateReading              // Reading an article
)

// Memory bounds to prevent unbounded growth.
const maxHistory = 100

// openTimeout bounds a single article load. Generation on a cache miss can
// take a while; this is the hard stop.
const openTimeout = 2 * time.Minute

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// Searcher runs full-text queries for the TUI.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// ArticleOpener loads an article, generating it on a miss.
type ArticleOpener interface {
	GetOrGenerate(ctx context.Context, category, slug string) (*article.Article, bool, error)
}

// Model is the Bubble Tea model for the encyclopedia browser.
type Model struct {
	// Input
	input      textarea.Model
	history    []string
	historyIdx int
	lastQuery  string

	// State
	state     State
	lastCtrlC time.Time

	// Search results and selection
	results []search.Result
	cursor  int
	status  string // transient status line (errors, hints)

	// Reading view
	current   *article.Article
	generated bool

	// Widgets
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	markdown *markdownRenderer
	viewBuf  strings.Builder

	// Async load management
	loadCancel context.CancelFunc

	// Dependencies
	searcher Searcher
	opener   ArticleOpener
	ctx      context.Context
	ctxClose context.CancelFunc

	// Dimensions
	width  int
	height int
}

// New creates a TUI model.
//
// ctx must be the same context passed to tea.WithContext so cancellation
// behaves consistently.
func New(ctx context.Context, searcher Searcher, opener ArticleOpener) (*Model, error) {
	if searcher == nil {
		return nil, errors.New("tui.New: searcher is required")
	}
	if opener == nil {
		return nil, errors.New("tui.New: opener is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Search the encyclopedia..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport keyboard handling is routed explicitly in handleKey.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		searcher: searcher,
		opener:   opener,
		ctx:      ctx,
		ctxClose: cancel,
		input:    ta,
		spinner:  sp,
		viewport: vp,
		help:     help.New(),
		keys:     newKeyMap(),
		styles:   DefaultStyles(),
		history:  make([]string, 0, maxHistory),
		markdown: newMarkdownRenderer(80),
		width:    80,
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}

// Run starts the Bubble Tea program on the given model.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
