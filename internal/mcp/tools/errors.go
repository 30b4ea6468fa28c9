package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal     = "INTERNAL"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// ErrNoAnalysis is returned by tools that need a completed run.
var ErrNoAnalysis = &CodedError{
	Code:    ErrCodeNotFound,
	Message: "no analysis loaded, call critpath_analyze first",
}

// WrapError converts an arbitrary error into a coded error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return err
	}

	msg := "analysis failed"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		msg = "analysis interrupted"
	}
	coded = &CodedError{Code: ErrCodeInternal, Message: msg, Cause: err}

	slog.Warn("tool error",
		slog.String("code", coded.Code),
		slog.String("error", err.Error()),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
