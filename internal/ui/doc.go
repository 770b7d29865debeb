// Package ui provides the styled building blocks for gridctl's non-TUI output.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - OK endpoints, 200 facets
//	ColorError     (red)    - Unreachable endpoints, refused facets
//	ColorWarning   (yellow) - Degraded endpoints, non-200 facets
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, unknown values
//	ColorSecondary (blue)   - Accents
//
// Call ConfigureColors once at startup so NO_COLOR and non-terminal output
// get plain text.
//
// # Tables
//
// RenderColumns draws a borderless table with status-aware cell colors,
// used by `gridctl get health` and `monitor cluster --show-panels`:
//
//	fmt.Println(ui.RenderColumns([]string{"NODE ID", "SAFE"}, rows))
//
// # Sparklines
//
// RenderSparkline draws a ratio history on a fixed 0..1 scale. Watch mode
// uses it for the share of safe members across reports.
package ui
