package action

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when a doAction chain revisits an alias.
var ErrCycle = errors.New("action alias cycle")

// FatalError marks a failure that must abort the whole task traversal
// instead of being routed through the _error transition.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string {
	if e.Cause == nil {
		return "fatal action error"
	}
	return fmt.Sprintf("fatal action error: %v", e.Cause)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// Fatal wraps err so the engine aborts the task. Errors returned by actions
// without this wrapper are recoverable.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Cause: err}
}

// IsFatal reports whether err, or anything it wraps, is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
