package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4)
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == StateLoading {
			m.rebuildViewportContent()
		}
		return m, cmd

	case searchDoneMsg:
		if msg.err != nil {
			m.status = "search failed: " + msg.err.Error()
		} else {
			m.results = msg.results
			m.cursor = 0
			m.lastQuery = msg.query
			if len(msg.results) == 0 {
				m.status = fmt.Sprintf("no results for %q", msg.query)
			} else {
				m.status = ""
			}
		}
		m.rebuildViewportContent()
		return m, nil

	case openStartedMsg:
		m.loadCancel = msg.cancel
		return m, listenForOpen(msg.doneCh)

	case openDoneMsg:
		m.cancelLoad()

		if msg.err != nil {
			m.state = StateSearch
			switch {
			case errors.Is(msg.err, context.Canceled):
				m.status = "(canceled)"
			case errors.Is(msg.err, context.DeadlineExceeded):
				m.status = "article load timed out"
			default:
				m.status = "load failed: " + msg.err.Error()
			}
			m.rebuildViewportContent()
			return m, m.input.Focus()
		}

		m.state = StateReading
		m.current = msg.article
		m.generated = msg.generated
		m.rebuildViewportContent()
		m.viewport.GotoTop()
		return m, nil
	}

	if m.state == StateSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}
