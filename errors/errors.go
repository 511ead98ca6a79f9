// Package errors provides the error type shared by the Octavia client packages.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeRequestFailed = "REQUEST_FAILED"
)

// DomainError represents a client-side or server-reported failure.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// NewConfigurationError creates an error for unusable connection settings.
func NewConfigurationError(message string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Details: details,
		Err:     err,
	}
}

// NewRequestFailedError creates an error describing a call the server or
// the transport did not acknowledge. code is the code reported for the
// failure, which may be empty.
func NewRequestFailedError(code, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeRequestFailed,
		Message: message,
		Details: code,
	}
}

// IsDomainError checks if the error is a domain error.
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeValidation
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeConfiguration
}

// IsRequestFailed checks if the error describes an unacknowledged call.
func IsRequestFailed(err error) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == ErrCodeRequestFailed
}
