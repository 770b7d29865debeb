package layout

import (
	"fmt"

	"github.com/rileyhilliard/gridctl/internal/errors"
)

// UnknownPanelError is returned when a layout references an unregistered panel.
type UnknownPanelError struct {
	ID   string
	Expr string
}

func (e *UnknownPanelError) structured() *errors.Error {
	return errors.New(errors.ErrLayout,
		fmt.Sprintf("Layout '%s' references unknown panel '%s'", e.Expr, e.ID),
		"Run 'gridctl monitor cluster --show-panels' to list panels and presets")
}

func (e *UnknownPanelError) Error() string { return e.structured().Error() }
func (e *UnknownPanelError) Unwrap() error { return e.structured() }

// EmptyLayoutError is returned for a blank layout expression.
type EmptyLayoutError struct{}

func (e *EmptyLayoutError) structured() *errors.Error {
	return errors.New(errors.ErrLayout,
		"Layout is empty",
		"Use a preset like 'default' or an expression like 'services,caches:members'")
}

func (e *EmptyLayoutError) Error() string { return e.structured().Error() }
func (e *EmptyLayoutError) Unwrap() error { return e.structured() }

// SyntaxError is returned for malformed expressions such as "a,,b" or "a:".
type SyntaxError struct {
	Expr   string
	Reason string
}

func (e *SyntaxError) structured() *errors.Error {
	return errors.New(errors.ErrLayout,
		fmt.Sprintf("Invalid layout '%s': %s", e.Expr, e.Reason),
		"Separate rows with ':' and panels in a row with ','")
}

func (e *SyntaxError) Error() string { return e.structured().Error() }
func (e *SyntaxError) Unwrap() error { return e.structured() }
