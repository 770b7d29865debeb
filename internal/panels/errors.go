package panels

import (
	"fmt"

	"github.com/rileyhilliard/gridctl/internal/errors"
)

// NotFoundError is returned when a panel id is not registered.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) structured() *errors.Error {
	return errors.New(errors.ErrPanel,
		fmt.Sprintf("Unknown panel '%s'", e.ID),
		"Run 'gridctl monitor cluster --show-panels' to list panels")
}

func (e *NotFoundError) Error() string { return e.structured().Error() }
func (e *NotFoundError) Unwrap() error { return e.structured() }

// MissingParameterError is returned when a panel or preset needs a
// parameter the caller did not supply.
type MissingParameterError struct {
	Panel string
	Param Param
}

func (e *MissingParameterError) structured() *errors.Error {
	return errors.New(errors.ErrPanel,
		fmt.Sprintf("'%s' requires a %s", e.Panel, e.Param),
		fmt.Sprintf("Pass it with %s", e.Param.Flag()))
}

func (e *MissingParameterError) Error() string { return e.structured().Error() }
func (e *MissingParameterError) Unwrap() error { return e.structured() }

// FetchError wraps a failed panel read. It is shown inside the panel and
// never ends the dashboard session.
type FetchError struct {
	Panel string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Panel, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
