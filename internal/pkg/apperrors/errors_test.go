package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidStateTransition, http.StatusConflict},
		{ErrInsufficientStock, http.StatusUnprocessableEntity},
		{ErrValidation, http.StatusBadRequest},
		{ErrAccessDenied, http.StatusForbidden},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: transfer 3 not found", ErrNotFound)
	if got := HTTPStatus(wrapped); got != http.StatusNotFound {
		t.Errorf("wrapped not found = %d, want 404", got)
	}

	double := fmt.Errorf("listing failed: %w", fmt.Errorf("%w: base 2", ErrAccessDenied))
	if got := HTTPStatus(double); got != http.StatusForbidden {
		t.Errorf("doubly wrapped access denied = %d, want 403", got)
	}
}
