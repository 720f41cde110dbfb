// Package shared contains the error taxonomy used across the report pipeline.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds that can be used for error checking with errors.Is().
var (
	// ErrUnavailable marks connectivity failures: the record store is
	// unreachable or rejected the credentials. Fatal before aggregation.
	ErrUnavailable = errors.New("record store unavailable")

	// ErrQuery marks a failed read once connected: bad SQL, scan errors,
	// cancelled transactions. Fatal for the run.
	ErrQuery = errors.New("record store query failed")

	// ErrInvalidInput marks bad caller input such as an unknown output format.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRender marks a failure while writing the assembled report.
	ErrRender = errors.New("report rendering failed")
)

// DomainError represents an error with operation context.
type DomainError struct {
	Domain  string // e.g., "store", "report", "render"
	Op      string // Operation that failed, e.g., "Load"
	Kind    error  // Base error kind for errors.Is() checking
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

// IsUnavailable checks if the error is a connectivity failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsQuery checks if the error is a query failure.
func IsQuery(err error) bool {
	return errors.Is(err, ErrQuery)
}

// IsInvalidInput checks if the error is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
