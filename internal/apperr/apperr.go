// Package apperr defines the error taxonomy shared by the catalogue, upload,
// email and checkout flows.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrProvider matches any ProviderError.
	ErrProvider = errors.New("provider request failed")
)

// ValidationError reports a missing or malformed input, detected before any
// external call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError wraps a failure returned by storage, database, payment or email providers.
type ProviderError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrProvider) match.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// Provider wraps err as a ProviderError. A nil err yields nil.
func Provider(provider, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Operation: operation, Err: err}
}
