package types

import (
	"errors"
	"fmt"
)

// Error classes. Typed errors below match these with errors.Is so callers can
// branch on the class without a type switch.
var (
	ErrValidation = errors.New("validation failed")
	ErrRemote     = errors.New("remote operation failed")
	ErrTransport  = errors.New("transport failure")
)

// Query state errors.
var (
	ErrInvalidPage     = errors.New("page number must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Toggle and editor errors.
var (
	ErrUnknownField     = errors.New("unknown toggle field")
	ErrEditorClosed     = errors.New("editor is not open")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrUnsupported      = errors.New("operation not supported by resource")
	ErrInvalidID        = errors.New("invalid record ID")
	ErrNotFound         = errors.New("record not found")
)

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Field   string // Offending field; empty for whole-request errors.
	Message string
	Err     error // Optional sentinel, e.g. ErrInvalidPage.
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RemoteFailure is a success:false envelope. Message is authored by the
// backend and shown to the user verbatim.
type RemoteFailure struct {
	Message string
}

func (e *RemoteFailure) Error() string {
	return e.Message
}

func (e *RemoteFailure) Is(target error) bool {
	return target == ErrRemote
}

// TransportError covers network failures, unexpected HTTP statuses and
// undecodable response bodies.
type TransportError struct {
	Op  string // Endpoint path or operation name.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps a sentinel as a field-scoped ValidationError.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}
