package core

import "fmt"

// ValidationError reports a malformed draft or update. Field names the
// offending attribute so callers can surface the error next to the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a mutation targeting an id that is not in the
// collection. It is surfaced to the caller, never retried.
type NotFoundError struct {
	Kind string // "transaction" or "goals"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// RemoteUnavailableError wraps a failure from the remote store. The in-memory
// repository keeps answering queries from its last-known snapshot; mutations
// attempted against the remote fail explicitly with this error.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote store unavailable during %s: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}
