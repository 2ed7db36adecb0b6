package api

import (
	"errors"
	"net/http"

	"github.com/hanseo/rosetta-api/internal/api/shared"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/service"
	"github.com/hanseo/rosetta-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, domain.ErrInvalidTargetAuto),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	// Shutdown in progress
	case errors.Is(err, service.ErrServiceClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error. Internal details stay in the logs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return "Text cannot be empty"
	case errors.Is(err, domain.ErrTextTooLong):
		return "Text exceeds the maximum length"
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return "Unsupported language"
	case errors.Is(err, domain.ErrInvalidTargetAuto):
		return "Target language cannot be auto-detect"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	case errors.Is(err, store.ErrEntryNotFound):
		return "History entry not found"
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return "Not found"
	case errors.Is(err, service.ErrServiceClosed):
		return "Service is shutting down"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes an error response for err, using the safe message
// unless an override is given. The full error is logged, never sent.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
