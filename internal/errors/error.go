package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategorySync       Category = "sync"
	CategoryValidation Category = "validation"
	CategoryCLI        Category = "cli"
)

// QueryError is a structured error with a code, detail and a fix suggestion.
type QueryError struct {
	// Code is a unique error identifier (e.g., "Q001").
	Code string

	// Category is the error type (sync, validation, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QueryError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *QueryError) WithSuggestion(s string) *QueryError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *QueryError) WithDetail(d string) *QueryError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *QueryError) Wrap(err error) *QueryError {
	e.Wrapped = err
	return e
}

// New creates a QueryError from a registered error code.
func New(code string) *QueryError {
	template, ok := registry[code]
	if !ok {
		return &QueryError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &QueryError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new QueryError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *QueryError {
	return &QueryError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// coder is implemented by public querysync errors that carry a registry code.
type coder interface {
	Code() string
}

// FromError wraps a standard error in a QueryError.
// If err (or anything it wraps) carries its own code, that code takes
// precedence over fallback.
func FromError(err error, fallback string) *QueryError {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	code := fallback
	var c coder
	if errors.As(err, &c) && c.Code() != "" {
		code = c.Code()
	}
	return New(code).Wrap(err)
}
