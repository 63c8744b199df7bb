package domain

import "errors"

var (
	// ErrInvalidArgument signals a request rejected by validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCursorNotFound signals a pagination cursor that no longer resolves to a record.
	ErrCursorNotFound = errors.New("cursor not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden signals an action on a resource owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized signals a missing or invalid identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotImplemented signals a capability the configured backend lacks.
	ErrNotImplemented = errors.New("not implemented")
)

// CursorNotFoundError reports which cursor could not be resolved.
type CursorNotFoundError struct {
	Cursor string
}

func (e *CursorNotFoundError) Error() string {
	return ErrCursorNotFound.Error() + ": " + e.Cursor
}

// Unwrap exposes both the cursor sentinel and the generic not-found sentinel.
func (e *CursorNotFoundError) Unwrap() []error { return []error{ErrCursorNotFound, ErrNotFound} }

// NewCursorNotFound creates a cursor-not-found error.
func NewCursorNotFound(cursor string) error {
	return &CursorNotFoundError{Cursor: cursor}
}

// InvalidArgumentError wraps ErrInvalidArgument with the offending field.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return ErrInvalidArgument.Error() + ": " + e.Field + ": " + e.Reason
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// NewInvalidArgument creates a validation error for a field.
func NewInvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}
