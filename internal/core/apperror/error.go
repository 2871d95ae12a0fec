// Package apperror provides structured, coded errors for population runs.
// Configuration problems, exhausted references and metadata lookups all surface as AppError
// so callers can branch on Code instead of matching messages.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes
const (
	// Infrastructure errors
	CodeInternal = "INTERNAL_ERROR"
	CodeStore    = "STORE_ERROR"

	// Setup errors (fatal, never retried)
	CodeConfiguration = "CONFIGURATION_ERROR"

	// Metadata errors
	CodeUnknownEntity = "UNKNOWN_ENTITY"
	CodeUnknownField  = "UNKNOWN_FIELD"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeValidation    = "VALIDATION_ERROR"

	// Reference resolution
	CodeIndexExhausted = "INDEX_EXHAUSTED"
)

// AppError is the standard error type of the module.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (entity, field, index, etc.)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewConfiguration creates a configuration error (missing store, missing metadata provider, bad plan).
func NewConfiguration(message string) *AppError {
	return &AppError{
		Code:    CodeConfiguration,
		Message: message,
	}
}

// NewUnknownEntity is returned when the metadata provider has no schema for name.
func NewUnknownEntity(name string) *AppError {
	return &AppError{
		Code:    CodeUnknownEntity,
		Message: fmt.Sprintf("entity %q is not registered", name),
		Details: map[string]any{"entity": name},
	}
}

// NewUnknownField is returned when a field or association name does not exist on an entity.
func NewUnknownField(entity, field string) *AppError {
	return &AppError{
		Code:    CodeUnknownField,
		Message: fmt.Sprintf("%s has no field %q", entity, field),
		Details: map[string]any{"entity": entity, "field": field},
	}
}

// NewInvalidValue is returned when a value cannot be assigned to a field.
func NewInvalidValue(entity, field string, value any) *AppError {
	return &AppError{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("cannot assign %T to %s.%s", value, entity, field),
		Details: map[string]any{"entity": entity, "field": field},
	}
}

// NewValidation is returned when a populated instance breaks a domain rule.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewIndexExhausted is returned when a one-to-one, non-optional association
// has consumed every available target instance.
func NewIndexExhausted(target string, index, available int) *AppError {
	return &AppError{
		Code:    CodeIndexExhausted,
		Message: fmt.Sprintf("no %s left for a required one-to-one reference (index %d, available %d)", target, index, available),
		Details: map[string]any{"target": target, "index": index, "available": available},
	}
}

// NewStore wraps a persistence failure.
func NewStore(op string, err error) *AppError {
	return &AppError{
		Code:    CodeStore,
		Message: fmt.Sprintf("store %s failed", op),
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsConfiguration checks if error is CodeConfiguration
func IsConfiguration(err error) bool {
	return HasCode(err, CodeConfiguration)
}

// IsIndexExhausted checks if error is CodeIndexExhausted
func IsIndexExhausted(err error) bool {
	return HasCode(err, CodeIndexExhausted)
}

// IsUnknownEntity checks if error is CodeUnknownEntity
func IsUnknownEntity(err error) bool {
	return HasCode(err, CodeUnknownEntity)
}

// IsValidation checks if error is CodeValidation
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation)
}
