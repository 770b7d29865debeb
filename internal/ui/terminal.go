package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalSize returns the size of f, or fallback values when unknown.
func TerminalSize(f *os.File, fallbackW, fallbackH int) (int, int) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackW, fallbackH
	}
	return w, h
}

// ConfigureColors sets the lipgloss color profile for output written to w.
// NO_COLOR or noColor forces plain ASCII.
func ConfigureColors(w io.Writer, noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
}

// ClearScreen clears the screen behind w and homes the cursor.
func ClearScreen(w io.Writer) {
	termenv.NewOutput(w).ClearScreen()
}
