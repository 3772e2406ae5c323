package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/dmaas/techwiki/internal/search"
)

// Accent color for the techwiki banner and headers.
const accentTeal = "#2AA198"

var bannerArt = []string{
	"▀█▀ █▀▀ █▀▀ █ █ █ █ █ █ █▄▀ █",
	" █  ██▄ █▄▄ █▀█ ▀▄▀▄▀ █ █ █ █",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	Snippet   lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentTeal)),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentTeal)),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Snippet:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderBanner returns the styled banner.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

var welcomeTips = []string{
	"Getting started:",
	"  • Type a query and press Enter to search",
	"  • ↑/↓ select a result, Tab opens it",
	"  • Articles missing from the corpus are generated on open",
	"  • Esc goes back, Ctrl+D exits",
}

// RenderWelcomeTips returns the styled getting-started tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// stripMarkers removes search highlight markers for terminal display.
func stripMarkers(s string) string {
	s = strings.ReplaceAll(s, search.HighlightStart, "")
	return strings.ReplaceAll(s, search.HighlightEnd, "")
}
