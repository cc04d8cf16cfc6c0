package fnmock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a loader or override argument was missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRead indicates the handler source could not be read.
	ErrRead = errors.New("unable to read handler source")

	// ErrTransform indicates the handler source could not be transformed or compiled.
	ErrTransform = errors.New("unable to transform handler source")

	// ErrInvalidHandler indicates the handler source did not export a function.
	ErrInvalidHandler = errors.New("handler source does not export a function")

	// ErrModuleNotFound is raised inside the handler when it requires an unknown module.
	ErrModuleNotFound = errors.New("module not found")
)

// HandlerError is a JavaScript exception or rejection surfaced from a handler.
type HandlerError struct {
	// Message is the exception message, or the string form of a non-Error reason.
	Message string

	// Value is the exported rejection reason.
	Value any
}

// Error implements error.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler failed: %s", e.Message)
}
