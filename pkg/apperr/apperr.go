package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for the request lifecycle. Services wrap these with
// fmt.Errorf("...: %w", Err...) so handlers can map them to HTTP codes
// without parsing messages.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidReference  = errors.New("referenced entity not found")
	ErrMissingApprover   = errors.New("approver id is required")
	ErrMissingComment    = errors.New("comment is required")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("request already decided")
	ErrPersistence       = errors.New("persistence failure")
)

// HTTPStatus maps a service error to the response status code.
// Unrecognized errors are treated as persistence-level failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrMissingApprover),
		errors.Is(err, ErrMissingComment):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
