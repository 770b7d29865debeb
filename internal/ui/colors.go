package ui

import "github.com/charmbracelet/lipgloss"

// Color palette using ANSI color codes for terminal compatibility.
// termenv downgrades or drops them when the terminal (or NO_COLOR) asks.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// StatusColor picks a color for a health status word or HTTP code as printed
// in reports: OK/200 green, Degraded/503 yellow, Unreachable/Refused red.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "OK", "200", "true":
		return ColorSuccess
	case "Unreachable", "Refused", "false":
		return ColorError
	case "", "-":
		return ColorMuted
	default:
		return ColorWarning
	}
}
