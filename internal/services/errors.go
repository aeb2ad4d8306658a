package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidOTP   = errors.New("invalid otp")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

type ServiceError struct {
	Kind    error
	Message string
	Details map[string]string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newValidationError(message string, details map[string]string) *ServiceError {
	return &ServiceError{Kind: ErrValidation, Message: message, Details: details}
}

func newNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: ErrNotFound, Message: message}
}

func newConflictError(message string) *ServiceError {
	return &ServiceError{Kind: ErrConflict, Message: message}
}

func newUnauthorizedError(message string) *ServiceError {
	return &ServiceError{Kind: ErrUnauthorized, Message: message}
}

func newUpstreamError(message string, err error) *ServiceError {
	return &ServiceError{Kind: ErrUpstream, Message: message, Err: err}
}

// Message returns the client-facing message of a service error, or
// fallback for anything else.
func Message(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// Details returns the field errors attached to a validation failure.
func Details(err error) map[string]string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Details
	}
	return nil
}
