package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// ErrorResponse is the JSON body for error replies
type ErrorResponse struct {
	Error string `json:"error"`
}

// renderError maps domain errors onto HTTP status codes. Everything in the
// taxonomy is recoverable and maps to a 4xx; anything else is an
// infrastructure failure and maps to 500 without leaking details.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, contentshield.ErrContentNotFound),
		errors.Is(err, contentshield.ErrUserNotFound),
		errors.Is(err, contentshield.ErrGrantNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, contentshield.ErrDuplicateContent),
		errors.Is(err, contentshield.ErrPendingRequestExists),
		errors.Is(err, contentshield.ErrInvalidStateTransition),
		errors.Is(err, contentshield.ErrEmailTaken),
		errors.Is(err, contentshield.ErrAlreadyLiked):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, contentshield.ErrPermissionDenied):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, contentshield.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, contentshield.ErrInvalidLicenseType):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		slog.Error("request failed", "path", r.URL.Path, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message})
}
