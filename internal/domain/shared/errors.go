// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrImmutable    = errors.New("entity is immutable")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "statement", "record", "report"
	Op      string // Operation that failed, e.g., "Create", "Interpret"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Statement domain errors
var (
	ErrStatementNotFound   = NewDomainError("statement", "Find", ErrNotFound, "statement not found")
	ErrStatementIncomplete = NewDomainError("statement", "Validate", ErrInvalidEntity, "actor, verb and object are required")
	ErrStoredBeforeEvent   = NewDomainError("statement", "Validate", ErrFutureTimestamp, "event timestamp is after the stored timestamp")
)

// Interpretation domain errors
var (
	ErrEventMissing         = NewDomainError("interpretation", "Validate", ErrValidation, "learning event is required")
	ErrLearnerRequired      = NewDomainError("interpretation", "Validate", ErrValidation, "either learner name or learner id must be provided")
	ErrActionRequired       = NewDomainError("interpretation", "Validate", ErrValidation, "action is required")
	ErrActivityRequired     = NewDomainError("interpretation", "Validate", ErrValidation, "either activity name or activity id must be provided")
	ErrEventNotInterpretable = NewDomainError("interpretation", "Interpret", ErrValidation, "learning event failed validation")
)

// Learning record domain errors
var (
	ErrRecordNotFound = NewDomainError("record", "Find", ErrNotFound, "learning record not found")
	ErrRecordInvalid  = NewDomainError("record", "Validate", ErrInvalidEntity, "user id and course id are required")
)

// Report domain errors
var (
	ErrInvalidDateRange = NewDomainError("report", "Validate", ErrInvalidInput, "start date must not be after end date")
	ErrInvalidLimit     = NewDomainError("report", "Validate", ErrValueOutOfRange, "limit must be positive")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrFutureTimestamp) ||
		errors.Is(err, ErrInvalidEntity)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
