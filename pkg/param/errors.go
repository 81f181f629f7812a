package param

import (
	"errors"
	"fmt"
)

// codedError is a sentinel error carrying a querysync error code.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }

// Code returns the querysync error code.
func (e *codedError) Code() string { return e.code }

var (
	// ErrReadonly is returned when SetMany targets a read-only field.
	ErrReadonly error = &codedError{code: "Q021", msg: "param: field is read-only"}

	// ErrUnknownField is returned for a field name the object does not declare.
	ErrUnknownField error = &codedError{code: "Q022", msg: "param: unknown field"}

	// ErrUnknownWatcher is returned by Unwatch for a handle that is not registered.
	ErrUnknownWatcher error = &codedError{code: "Q005", msg: "param: unknown watcher"}
)

// ValidationError reports a value rejected by a field's kind or constraint.
type ValidationError struct {
	Object string
	Field  string
	Value  any
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("param: invalid value %#v for %s.%s: %v", e.Value, e.Object, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Code returns the querysync error code.
func (e *ValidationError) Code() string {
	return "Q020"
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
