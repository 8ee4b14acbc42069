package domain

import (
	"errors"
	"fmt"
)

// Domain Const errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnboundCollection = errors.New("collection has no trigger binding")
	ErrDuplicateDispatch = errors.New("content already announced")
	ErrDeliveryFailed    = errors.New("notification delivery failed")
	ErrProviderError     = errors.New("external provider error")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// ProviderError is returned by transports when the messaging provider rejects a send
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e ProviderError) Unwrap() error {
	return ErrProviderError
}

func NewProviderError(provider string, statusCode int, message string, retryable bool) ProviderError {
	return ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  retryable,
	}
}

// DeliveryError reports a failed send for one document
type DeliveryError struct {
	Kind      ContentKind
	ContentID string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("sending notification for %s %s: %v", e.Kind.Label(), e.ContentID, e.Err)
}

// Is lets errors.Is match ErrDeliveryFailed
func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
