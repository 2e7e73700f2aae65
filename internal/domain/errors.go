// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNoQuote indicates the quote source had no quote to offer.
	// This is a soft failure: the pipeline reports an empty result
	// instead of an error response.
	ErrNoQuote = errors.New("no quote available")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrMalformedEvaluation indicates the model output could not be
	// parsed into any usable evaluation at all.
	ErrMalformedEvaluation = errors.New("malformed evaluation")
)

// NoQuoteError provides context for an absent quote of the day.
type NoQuoteError struct {
	Source string
	Status int
}

// Error implements the error interface.
func (e *NoQuoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("no quote available from %s (HTTP %d)", e.Source, e.Status)
	}

	return "no quote available from " + e.Source
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NoQuoteError) Unwrap() error {
	return ErrNoQuote
}

// NewNoQuoteError creates a no-quote error with context.
func NewNoQuoteError(source string, status int) error {
	return &NoQuoteError{Source: source, Status: status}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// MalformedEvaluationError provides context for unparseable model output.
type MalformedEvaluationError struct {
	Reason string
}

// Error implements the error interface.
func (e *MalformedEvaluationError) Error() string {
	return "malformed evaluation: " + e.Reason
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *MalformedEvaluationError) Unwrap() error {
	return ErrMalformedEvaluation
}

// NewMalformedEvaluationError creates a malformed-evaluation error.
func NewMalformedEvaluationError(reason string) error {
	return &MalformedEvaluationError{Reason: reason}
}

// IsNoQuote checks if an error is a no-quote error.
func IsNoQuote(err error) bool {
	return errors.Is(err, ErrNoQuote)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsMalformedEvaluation checks if an error is a malformed-evaluation error.
func IsMalformedEvaluation(err error) bool {
	return errors.Is(err, ErrMalformedEvaluation)
}
