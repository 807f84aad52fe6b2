// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
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

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Persistence errors
	ErrPersistence = errors.New("persistence error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "roster", "store"
	Op      string // Operation that failed, e.g., "Register", "AddGrade"
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

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Register", ErrAlreadyExists, "student ID already exists")
	ErrEmptyStudentID       = NewDomainError("student", "Validate", ErrEmptyValue, "student ID cannot be empty")
	ErrEmptyStudentName     = NewDomainError("student", "Validate", ErrEmptyValue, "student name cannot be empty")
	ErrGradeOutOfRange      = NewDomainError("student", "AddGrade", ErrValueOutOfRange, "grade must be between 0 and 100")
	ErrMultilineValue       = NewDomainError("student", "Validate", ErrInvalidFormat, "value cannot contain line breaks")
)

// Store errors
var (
	ErrStoreUnavailable = NewDomainError("store", "Open", ErrPersistence, "store is unavailable")
	ErrStoreCorrupted   = NewDomainError("store", "Load", ErrPersistence, "stored roster is unreadable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsPersistence checks if the error came from loading or saving the roster.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// Persistence wraps a store failure so callers can recognise it with IsPersistence.
func Persistence(op, message string, err error) error {
	if err == nil {
		return nil
	}
	return WrapError("store", op, ErrPersistence, message, err)
}
