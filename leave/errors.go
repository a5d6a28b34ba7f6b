/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place. Every failure crossing the package boundary
  is one of the structured types below, so the surrounding application can
  map errors to user-facing responses without inspecting error text.

ERROR CATEGORIES:
  ValidationError    - structurally invalid input; caller fixes the input
  PolicyError        - well-formed input that violates a business rule
  StateError         - illegal transition for the record's current status
  AuthorizationError - actor may not perform the transition; never retried
  NotFoundError      - entity missing or outside the actor's tenant scope
  ConflictError      - operation conflicts with existing records
  StorageError       - persistence failure; transient, retryable

USAGE:
  Callers match with errors.Is against the sentinels, or errors.As for the
  structured detail:

    var pe *leave.PolicyError
    if errors.As(err, &pe) && pe.Rule == leave.RuleNotice { ... }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation   = errors.New("invalid input")
	ErrPolicy       = errors.New("policy violation")
	ErrInvalidState = errors.New("invalid state transition")
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports structurally invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Rule identifies which submission rule a PolicyError came from.
type Rule string

const (
	RuleNotice  Rule = "notice"
	RuleSpan    Rule = "span"
	RuleOverlap Rule = "overlap"
	RuleBalance Rule = "balance"
)

// PolicyError reports well-formed input that violates a business rule.
// Message is safe to surface verbatim to the end user.
type PolicyError struct {
	Rule    Rule
	Message string
}

func (e *PolicyError) Error() string { return e.Message }
func (e *PolicyError) Unwrap() error { return ErrPolicy }

// StateError reports a transition attempted from a non-Pending status.
// Safe to retry after refetching the record.
type StateError struct {
	ApplicationID ApplicationID
	Status        Status
	Attempted     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s application %s: status is %s", e.Attempted, e.ApplicationID, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// AuthorizationError reports that the actor lacks the right to perform the
// operation. Fatal to the operation.
type AuthorizationError struct {
	Actor  ActorID
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s not authorized: %s", e.Actor, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

// NotFoundError reports a missing entity, or one outside the actor's tenant.
type NotFoundError struct {
	Kind string // "leave type", "application"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports an operation blocked by existing records, e.g.
// deleting a leave type that applications still reference.
type ConflictError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StorageError wraps a persistence failure. Transient from the caller's
// perspective; decide/cancel may be retried with the same application id.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsClientError returns true if the error is due to the caller's input or a
// stale view, not an engine fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPolicy) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
