// Package engine provides the HTTP client for the external workflow
// automation engine.
package engine

import (
	"errors"
	"fmt"
)

// Error is a typed failure from the engine: a non-2xx response or a
// transport failure. Status is 0 for transport failures.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "engine request failed: " + e.Message
	}

	return fmt.Sprintf("engine returned status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an engine 404.
func IsNotFound(err error) bool {
	var engineErr *Error

	return errors.As(err, &engineErr) && engineErr.Status == 404
}

// AsEngineError extracts a typed engine error from an error chain.
func AsEngineError(err error) (*Error, bool) {
	var engineErr *Error

	ok := errors.As(err, &engineErr)

	return engineErr, ok
}
