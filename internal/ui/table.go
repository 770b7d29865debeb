package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			PaddingRight(2),
		Cell: lipgloss.NewStyle().
			PaddingRight(2),
	}
}

// RenderColumns renders a borderless, left-aligned table for CLI output (not TUI).
// Cells that look like health statuses are colored with StatusColor.
func RenderColumns(headers []string, rows [][]string) string {
	style := DefaultTableStyle()

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Header
			}
			if row >= 0 && row < len(rows) && col < len(rows[row]) {
				return style.Cell.Foreground(StatusColor(rows[row][col]))
			}
			return style.Cell
		})

	return t.String()
}

// RenderKeyValues renders label/value pairs with aligned labels.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}

	label := lipgloss.NewStyle().Foreground(ColorMuted)
	var out string
	for i, p := range pairs {
		if i > 0 {
			out += "\n"
		}
		out += padRight(label.Render(p[0]+":"), width+2) + p[1]
	}
	return out
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	padding := width - visibleLen
	for i := 0; i < padding; i++ {
		s += " "
	}
	return s
}
