package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors

func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewNotFoundError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: "Not found",
		Detail:  detail,
	}
}

// Provider-specific errors

// NewConfigError reports a missing or unusable credential/setting. It fails
// fast, before any provider task is submitted.
func NewConfigError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "Configuration error",
		Detail:  detail,
	}
}

// NewProviderTimeoutError reports that task polling exhausted its attempt budget.
func NewProviderTimeoutError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusGatewayTimeout,
		Message: "Provider task timed out",
		Detail:  detail,
	}
}

// NewProviderStatusError reports a task that finished in a non-success state.
func NewProviderStatusError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Provider task failed",
		Detail:  detail,
	}
}
