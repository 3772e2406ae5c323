package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Search     key.Binding
	Open       key.Binding
	Select     key.Binding
	Back       key.Binding
	History    key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Search:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Open:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "open")),
		Select:     key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		History:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "history")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

//nolint:gocyclo // keyboard handler branches over all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		case 'p':
			if m.state == StateSearch {
				return m.navigateHistory(-1)
			}
		case 'n':
			if m.state == StateSearch {
				return m.navigateHistory(1)
			}
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if m.state == StateSearch {
			return m.handleSubmit()
		}

	case tea.KeyTab:
		if m.state == StateSearch && len(m.results) > 0 {
			return m.handleOpen()
		}

	case tea.KeyUp:
		switch m.state {
		case StateSearch:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case StateReading:
			m.viewport.ScrollUp(1)
			return m, nil
		}

	case tea.KeyDown:
		switch m.state {
		case StateSearch:
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		case StateReading:
			m.viewport.ScrollDown(1)
			return m, nil
		}

	case tea.KeyEscape:
		switch m.state {
		case StateLoading:
			m.cancelLoad()
			m.state = StateSearch
			m.status = "(canceled)"
			return m, nil
		case StateReading:
			m.state = StateSearch
			m.current = nil
			m.rebuildViewportContent()
			return m, m.input.Focus()
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	if m.state == StateSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second quits.
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	switch m.state {
	case StateSearch:
		m.input.Reset()
	case StateLoading:
		m.cancelLoad()
		m.state = StateSearch
		m.status = "(canceled)"
	case StateReading:
		m.state = StateSearch
		m.current = nil
		m.rebuildViewportContent()
	}
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	m.history = append(m.history, query)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)
	m.status = ""

	return m, m.runSearch(query)
}

func (m *Model) handleOpen() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return m, nil
	}
	hit := m.results[m.cursor]

	m.state = StateLoading
	m.status = ""
	m.rebuildViewportContent()

	return m, tea.Batch(
		m.spinner.Tick,
		m.openArticle(hit.Category, hit.Slug),
	)
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
	return m, nil
}

func (m *Model) cancelLoad() {
	if m.loadCancel != nil {
		m.loadCancel()
		m.loadCancel = nil
	}
}

// cleanup cancels any in-flight load and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxClose != nil {
		m.ctxClose()
		m.ctxClose = nil
	}
	m.cancelLoad()
	return tea.Quit
}
