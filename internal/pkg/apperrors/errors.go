// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by all domain services. Services wrap these with
// fmt.Errorf("%w: ...") so handlers can map them to HTTP statuses with
// errors.Is while keeping the original context in the message.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrValidation             = errors.New("validation failed")
	ErrAccessDenied           = errors.New("access denied")
)

// HTTPStatus maps a domain error to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
