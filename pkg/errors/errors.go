// Package errors carries the coded errors orgtower returns across package
// boundaries. The CLI prints [UserMessage]; the HTTP server maps the [Code]
// to a status.
//
// Codes fall into four groups:
//   - INVALID_*, FILE_NOT_FOUND: input rejected before any stage ran
//   - EXTRACTION_FAILED, NO_STAKEHOLDERS, SUPERSEDED: the extraction boundary
//   - STRUCTURAL_VIOLATION: a tree invariant broke after sanitization; always a bug
//   - NOT_FOUND, SESSION_NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED
//
// Deleting an unknown contact is a no-op, not an error.
//
//	err := errors.Wrap(errors.ErrCodeExtraction, cause, "extract %d documents", n)
//	if errors.Is(err, errors.ErrCodeExtraction) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class independent of its message.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	ErrCodeExtraction     Code = "EXTRACTION_FAILED"
	ErrCodeNoStakeholders Code = "NO_STAKEHOLDERS"
	ErrCodeSuperseded     Code = "SUPERSEDED"

	ErrCodeStructural Code = "STRUCTURAL_VIOLATION"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
	ErrCodeUnsupported     Code = "UNSUPPORTED"
)

// Error pairs a Code with a readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return s
	}
	return s + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error without a cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error that unwraps to cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the first *Error in err's chain carries code.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// IsStructural reports whether err is a tree invariant violation. Bad input
// never produces one.
func IsStructural(err error) bool { return Is(err, ErrCodeStructural) }

// UserMessage drops the code prefix and cause from coded errors. Other
// errors print as-is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
