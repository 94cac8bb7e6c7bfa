// Package errors provides structured error types for kitchenplan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, server and agent tools
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - domain codes (HANDLE_TOO_CLOSE_TO_EDGE, ...): synthesis failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "save %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeConfigNotFound Code = "CONFIG_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeUnknownTool    Code = "UNKNOWN_TOOL"

	// Synthesis errors
	ErrCodeHandleTooClose     Code = "HANDLE_TOO_CLOSE_TO_EDGE"
	ErrCodeLineLengthMismatch Code = "LINE_LENGTH_MISMATCH"
	ErrCodeUnknownModuleType  Code = "UNKNOWN_MODULE_TYPE"
	ErrCodeInvalidCorner      Code = "INVALID_CORNER"

	// Infrastructure errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
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

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted.
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

// HTTPStatus maps an error code to the HTTP status the server reports.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidID:
		return 400
	case ErrCodeNotFound, ErrCodeConfigNotFound, ErrCodeFileNotFound, ErrCodeUnknownTool:
		return 404
	case ErrCodeInvalidConfig, ErrCodeHandleTooClose, ErrCodeLineLengthMismatch,
		ErrCodeUnknownModuleType, ErrCodeInvalidCorner:
		return 422
	case ErrCodeStoreUnavailable:
		return 503
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
