package session

import (
	"fmt"
	"strings"
)

// IDError represents a malformed session or task identifier.
type IDError struct {
	// Field names the offending identifier, e.g. "session id".
	Field string
	// Value is the rejected identifier.
	Value string
}

// Error implements the error interface.
func (e *IDError) Error() string {
	return fmt.Sprintf("malformed %s %q: must be non-empty", e.Field, e.Value)
}

// StoreError wraps a backend failure with the operation that hit it.
type StoreError struct {
	// Op is the store operation, e.g. "record".
	Op string
	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// validateIDs rejects empty or whitespace-only identifiers.
func validateIDs(sessionID, taskID string) error {
	if isBlank(sessionID) {
		return &IDError{Field: "session id", Value: sessionID}
	}
	if isBlank(taskID) {
		return &IDError{Field: "task id", Value: taskID}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
