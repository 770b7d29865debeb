package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gridctl/internal/ui"
)

// Dashboard palette, on top of the shared ui colors.
const (
	ColorBorder   = ui.ColorMuted
	ColorAccent   = ui.ColorInfo
	ColorCritical = ui.ColorError
	ColorStale    = ui.ColorWarning
)

// Rounded box pieces.
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Title annotations.
const (
	markTrimmed = " (trimmed)"
	markStale   = " (stale)"
	markError   = " (error)"
)

var (
	BorderStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	ExpandedBorderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent)

	ErrorBorderStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true)

	// ErrorStyle is for errors that have persisted across refreshes.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	// InlineErrorStyle is for a single failed refresh.
	InlineErrorStyle = lipgloss.NewStyle().
				Foreground(ColorStale)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)
