package models

import (
	"errors"
	"fmt"
)

// Common billing errors
var (
	// ErrNegativeDuration is returned when a position ends before it starts or
	// its pause exceeds the time between start and end.
	ErrNegativeDuration = errors.New("position duration is negative")

	// ErrMissingSetting is returned when a settings field required by an output
	// format is absent.
	ErrMissingSetting = errors.New("missing required setting")

	// ErrUnknownCategory is returned for offtime or expense categories without a
	// classification.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnsupportedKind is returned when a renderer cannot produce the requested
	// document kind.
	ErrUnsupportedKind = errors.New("unsupported document kind")

	// ErrNotFound is returned when a referenced record is not part of the snapshot.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidDate is returned for unparseable date literals.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidNumber is returned for unparseable numeric literals.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrWriteFailed is returned when an output artifact cannot be written.
	ErrWriteFailed = errors.New("cannot write document")
)

// ValidationError reports structurally invalid input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, err error, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// FormatError reports an unparseable date or number in an otherwise valid record.
type FormatError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("format error for field '%s': %v (value: %q)", e.Field, e.Err, e.Value)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError creates a new FormatError.
func NewFormatError(field, value string, err error) *FormatError {
	return &FormatError{
		Field: field,
		Value: value,
		Err:   err,
	}
}

// RenderError wraps output failures with the artifact they concern.
type RenderError struct {
	// Op is the operation that failed (e.g., "Write", "Rename").
	Op string

	// Path is the artifact being produced.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render: %s failed (%s): %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("render: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is makes every RenderError match ErrWriteFailed in addition to its cause.
func (e *RenderError) Is(target error) bool {
	return target == ErrWriteFailed
}

// NewRenderError creates a new RenderError.
func NewRenderError(op, path string, err error) *RenderError {
	return &RenderError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// WrapRenderError wraps an error as a RenderError if it isn't already one.
func WrapRenderError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return err // Already wrapped
	}

	return NewRenderError(op, path, err)
}
