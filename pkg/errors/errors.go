package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront failure taxonomy.
var (
	// ErrNotFound marks a missing entity (cart line, catalog item, session).
	ErrNotFound = errors.New("resource not found")
	// ErrValidation marks a local, pre-submission validation failure raised
	// before any backend call is made.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateItem marks an attempt to re-add a non-mergeable cart entry.
	ErrDuplicateItem = errors.New("duplicate cart item")
	// ErrBackend marks a non-success response from the catalog backend.
	ErrBackend = errors.New("backend error")
	// ErrPersistence marks a durable-store read or write failure. Callers
	// degrade gracefully: reads fall back to empty state, writes warn only.
	ErrPersistence = errors.New("persistence failure")
	// ErrConflict marks a lost concurrent-update race.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable marks a temporarily unreachable collaborator.
	ErrUnavailable = errors.New("service unavailable")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Validation creates a 400 error for a local validation failure.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// DuplicateItem creates a 409 error for a non-mergeable cart entry re-add.
func DuplicateItem(itemID string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_ITEM",
		Message: fmt.Sprintf("item %s is already in the cart and cannot be added twice", itemID),
		Status:  http.StatusConflict,
		Err:     ErrDuplicateItem,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Backend creates an error for a non-success backend response. The message is
// extracted from the response body when available, generic otherwise.
func Backend(status int, message string) *AppError {
	if message == "" {
		message = "the catalog backend returned an error"
	}
	return &AppError{
		Code:    "BACKEND_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrBackend,
	}
}

// Persistence wraps a durable-store failure. It maps to 500 but is expected
// to be logged and absorbed rather than returned to callers.
func Persistence(op string, err error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_ERROR",
		Message: fmt.Sprintf("durable store %s failed", op),
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrPersistence, err),
	}
}

// Unavailable creates a 503 error with a retry hint.
func Unavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrUnavailable,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateItem), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
