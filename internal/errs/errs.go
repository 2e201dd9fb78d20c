// Package errs tags errors with the machine-readable codes surfaced in
// response error extensions. Wrapping preserves the cause chain, so
// errors.Is against data source sentinels keeps working.
package errs

import (
	"errors"
	"fmt"
)

// Code is the machine-readable error classification.
type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeTypeResolution Code = "TYPE_RESOLUTION"
	CodeValidation     Code = "VALIDATION"
	CodeTimeout        Code = "TIMEOUT"
	CodeConflict       Code = "CONFLICT"
)

// Error couples a cause with its code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error from a format string.
func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a code to an existing error. A nil err stays nil; an err
// already carrying a code keeps its original code.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the code from an error chain.
func CodeOf(err error) (Code, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code, true
	}
	return "", false
}
