package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Safe / check passed
	SymbolFail     = "✗" // Not safe / check failed
	SymbolPending  = "○" // Not yet polled
	SymbolProgress = "◐" // Poll in progress
	SymbolComplete = "●" // Endpoint OK
	SymbolWarning  = "⚠" // Non-fatal warning
)
