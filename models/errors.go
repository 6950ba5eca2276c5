package models

import (
	"fmt"
	"strings"
)

// ValidationError carries field-level validation failures. It is always
// raised before any write.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Fields: map[string]string{field: message}}
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PermissionError means the actor lacks the required role or ownership.
type PermissionError struct {
	Message string
}

func (e PermissionError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return e.Message
}

// NotFoundError names the missing resource without leaking internals.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InvalidTransitionError is a moderation state machine guard failure.
type InvalidTransitionError struct {
	From PostStatus
	To   PostStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// StorageError means media persistence failed; the surrounding transaction
// rolls back so no partially written submission is observable.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return "storage " + e.Op + " failed: " + e.Err.Error()
}

func (e StorageError) Unwrap() error { return e.Err }

// IntegrityError wraps an unexpected persistence-layer failure. It is logged
// with full context and surfaced to callers as an opaque failure.
type IntegrityError struct {
	Err error
}

func (e IntegrityError) Error() string { return "internal error" }

func (e IntegrityError) Unwrap() error { return e.Err }
