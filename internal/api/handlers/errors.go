package handlers

import (
	"errors"
	"net/http"

	"github.com/rxreplenish/rde/internal/domain"
)

// statusForError maps the sentinel errors of internal/domain/errors.go
// to HTTP status codes (spec §7's error taxonomy).
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrAlreadyRefunded),
		errors.Is(err, domain.ErrNoEligibleSuggestions),
		errors.Is(err, domain.ErrSupplierUnknown):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
