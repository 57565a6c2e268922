package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ShutdownError reports a failure the app cannot recover from without restarting, e.g. a closed database.
type ShutdownError struct {
	Message string
	Err     error
}

func NewShutdownError(msg string, err error) error {
	return &ShutdownError{Message: msg, Err: err}
}

func (s *ShutdownError) Error() string {
	if s.Err == nil {
		return s.Message
	}
	return s.Message + ": " + s.Err.Error()
}

func (s *ShutdownError) Unwrap() error { return s.Err }

// IsShutdown reports whether err, or any error it wraps, is a ShutdownError.
func IsShutdown(err error) bool {
	var serr *ShutdownError
	return errors.As(err, &serr)
}
