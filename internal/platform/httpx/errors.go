// Package httpx provides the JSON response and error surface shared by all handlers.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Services wrap these with detail via
// fmt.Errorf("%w: ...") and handlers map them back to HTTP statuses.
var (
	ErrValidation      = errors.New("VALIDATION_ERROR")
	ErrLocked          = errors.New("LOCKED")
	ErrOverLimit       = errors.New("OVER_LIMIT")
	ErrForbidden       = errors.New("FORBIDDEN")
	ErrNotFound        = errors.New("NOT_FOUND")
	ErrUnauthenticated = errors.New("UNAUTHENTICATED")
	ErrConflict        = errors.New("CONFLICT")
)

// StatusOf maps a domain error to its HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrOverLimit):
		return http.StatusBadRequest
	case errors.Is(err, ErrLocked), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
