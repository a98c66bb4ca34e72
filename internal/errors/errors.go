package errors

import (
	"net/http"
)

// APIError represents an application error with its HTTP status
type APIError struct {
	Status   int    `json:"-"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *APIError) Unwrap() error {
	return e.Internal
}

func newAPIError(status int, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Message:  message,
		Internal: err,
	}
}

// Taxonomy constructors. Handlers and services wrap failures with the
// narrowest one that applies; anything unwrapped becomes Internal.

func BadRequest(message string, err error) *APIError {
	return newAPIError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return newAPIError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return newAPIError(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return newAPIError(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return newAPIError(http.StatusConflict, message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, message, err)
}

// StorageUnavailable marks a backing-store failure
func StorageUnavailable(err error) *APIError {
	return newAPIError(http.StatusInternalServerError, "Storage unavailable", err)
}

func Internal(err error) *APIError {
	return newAPIError(http.StatusInternalServerError, "Internal server error", err)
}

// NewValidationError wraps gin binding failures
func NewValidationError(err error) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, "Validation failed", err)
}
