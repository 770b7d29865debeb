package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Fallback size until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// renderFrame renders the panels plus the footer, or the help overlay.
func (m Model) renderFrame() string {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = defaultWidth, defaultHeight
	}

	if m.showHelp {
		return m.renderHelpOverlay(width, height)
	}

	body := Render(m.layout, m.state, width, height-footerHeight)
	return body + "\n" + m.renderFooter(width)
}

// renderFooter shows the layout, refresh status and the short key help.
func (m Model) renderFooter(width int) string {
	status := []string{"gridctl", m.layout.Name}
	switch {
	case m.phase == PhaseRefreshing:
		status = append(status, "refreshing"+ellipsis)
	case !m.lastUpdate.IsZero():
		status = append(status, "updated "+m.lastUpdate.Format("15:04:05"))
	}
	if m.state.MaxHeight > 0 {
		status = append(status, fmt.Sprintf("height %d", m.state.MaxHeight))
	}

	line := strings.Join(status, " | ") + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
	return FooterStyle.Render(ansi.Truncate(line, width, ellipsis))
}

// renderHelpOverlay renders a centered box with the full key help.
func (m Model) renderHelpOverlay(width, height int) string {
	lines := []string{
		helpTitleStyle.Render("Keyboard Shortcuts"),
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		MutedStyle.Render("Left click a panel to expand it. Press ? to close."),
	}
	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
