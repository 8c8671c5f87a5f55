// Package errors provides structured error types for femtopgm.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the compiler and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Messages that name the offending value and the violated constraint
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every compilation failure is fatal to the step in which it occurs:
//   - CONFIGURATION_ERROR: invalid lab name, missing sample size, bad options
//   - STRUCTURE_ERROR: nesting depth exceeded, unsupported object on insertion
//   - INVALID_ARGUMENT: out-of-range shutter state, non-positive repeat count,
//     insufficient calibration samples
//   - IO_ERROR, NOT_FOUND, INTERNAL_ERROR: everything around the core
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "repeat count must be positive, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Compilation errors
	ErrCodeConfiguration   Code = "CONFIGURATION_ERROR"
	ErrCodeStructure       Code = "STRUCTURE_ERROR"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Surrounding errors
	ErrCodeIO       Code = "IO_ERROR"
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Configuration is shorthand for New(ErrCodeConfiguration, ...).
func Configuration(format string, args ...any) *Error {
	return New(ErrCodeConfiguration, format, args...)
}

// Structure is shorthand for New(ErrCodeStructure, ...).
func Structure(format string, args ...any) *Error {
	return New(ErrCodeStructure, format, args...)
}

// InvalidArgument is shorthand for New(ErrCodeInvalidArgument, ...).
func InvalidArgument(format string, args ...any) *Error {
	return New(ErrCodeInvalidArgument, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
