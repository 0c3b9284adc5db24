package core

import "github.com/pkg/errors"

type (
	// FieldError reports a problem with one named field of a request or
	// import row.
	FieldError struct {
		Field string
		Error string
	}

	// ValidationError is a user-correctable failure detected before any
	// store mutation. Fields may be empty for message-only errors.
	ValidationError struct {
		Err    error
		Fields []FieldError
	}
)

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals the HTTP server down; it never reaches the client.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks the wrapped cause chain for a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
