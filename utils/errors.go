package utils

import (
	"errors"
	"fmt"
	"net/http"

	"tourguard/models"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	Cause      error       `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// GetServiceError extracts a ServiceError from anywhere in an error chain
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// HasErrorCode reports whether err carries the given service error code
func HasErrorCode(err error, code string) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.Code == code
}

// Common service error constructors
func NewValidationError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationErrorWithDetails(message string, details []ValidationError) error {
	return ServiceError{
		Code:       models.ErrCodeValidation,
		Message:    message,
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnauthenticatedError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       models.ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func NewInvalidTransitionError(from, to models.AlertStatus) error {
	message := fmt.Sprintf("Cannot change alert status from %s to %s", from, to)
	if from.Terminal() {
		message = fmt.Sprintf("Alert is closed as %s and cannot change to %s", from, to)
	}
	return ServiceError{
		Code:       models.ErrCodeTransition,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewConcurrentTransitionError() error {
	return ServiceError{
		Code:       models.ErrCodeTransition,
		Message:    "Alert status changed while the update was in flight; reload and retry",
		StatusCode: http.StatusConflict,
	}
}

func NewStorageError(operation string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeStorage,
		Message:    fmt.Sprintf("Storage operation failed: %s", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewInternalError(message string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeInternal,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewExternalServiceError(message string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeExternal,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusBadGateway,
	}
}

func NewServiceUnavailableError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeExternal,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewRateLimitError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// Business logic specific errors
func NewAlertNotFoundError() error {
	return NewNotFoundError("Alert")
}

func NewAlertAccessDeniedError() error {
	return NewForbiddenError("You can only access your own alerts")
}
