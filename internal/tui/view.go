package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable content.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	if m.state == StateSearch {
		_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("? "))
		_, _ = m.viewBuf.WriteString(m.input.View())
	} else {
		_, _ = m.viewBuf.WriteString(m.styles.System.Render(m.inputLinePlaceholder()))
	}
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

func (m *Model) inputLinePlaceholder() string {
	if m.state == StateLoading {
		return "loading..."
	}
	if m.current != nil {
		return m.current.Category + "/" + m.current.Slug
	}
	return ""
}

// rebuildViewportContent reconstructs the viewport content for the current
// state. Called when results, the open article, or dimensions change.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	switch m.state {
	case StateReading:
		if m.current != nil {
			header := m.current.Topic
			if m.generated {
				header += "  (freshly generated)"
			}
			_, _ = b.WriteString(m.styles.Header.Render(header))
			_, _ = b.WriteString("\n\n")
			_, _ = b.WriteString(m.markdown.Render(m.current.Markdown))
			_, _ = b.WriteString("\n")
		}

	default: // StateSearch, StateLoading
		_, _ = b.WriteString(m.styles.RenderBanner())
		_, _ = b.WriteString("\n")

		if len(m.results) == 0 && m.status == "" {
			_, _ = b.WriteString(m.styles.RenderWelcomeTips())
		}

		for i, r := range m.results {
			line := fmt.Sprintf("%s/%s  %s", r.Category, r.Slug, r.Topic)
			if i == m.cursor {
				_, _ = b.WriteString(m.styles.Selected.Render("> " + line))
			} else {
				_, _ = b.WriteString("  " + line)
			}
			_, _ = b.WriteString("\n")
			if r.Snippet != "" {
				_, _ = b.WriteString(m.styles.Snippet.Render("      " + stripMarkers(r.Snippet)))
				_, _ = b.WriteString("\n")
			}
		}

		if m.state == StateLoading {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(m.spinner.View())
			_, _ = b.WriteString(" Loading article (may generate on first visit)...\n")
		}

		if m.status != "" {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(m.styles.Error.Render(m.status))
			_, _ = b.WriteString("\n")
		}
	}

	m.viewport.SetContent(b.String())
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	switch m.state {
	case StateSearch:
		bindings = []key.Binding{
			m.keys.Search, m.keys.Open, m.keys.Select,
			m.keys.History, m.keys.Quit,
		}
	case StateLoading:
		bindings = []key.Binding{m.keys.Back, m.keys.Quit}
	case StateReading:
		bindings = []key.Binding{
			m.keys.Back, m.keys.ScrollUp, m.keys.ScrollDown, m.keys.Quit,
		}
	}
	return m.help.ShortHelpView(bindings)
}
