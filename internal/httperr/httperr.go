// Package httperr maps domain errors to JSON HTTP error responses. The
// handlers and the authentication middleware both write error bodies;
// keeping the mapping here keeps the two in lockstep.
package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/audio-repo/internal/apperror"
)

// Response is the standard error body returned by every endpoint.
type Response struct {
	Error   string `json:"error"`   // machine-readable error type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// Write maps a domain error to its HTTP status and sends it.
//
// The service layer returns apperror sentinels; this is the one place
// they become status codes: 401 authentication, 403 authorization, 404
// not found, 400 validation, 409 conflict. A 401 carries the
// WWW-Authenticate challenge. Anything unrecognized is a 500 with a
// generic body; raw internal error text never reaches the client.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "an internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message

		switch {
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Error: errorType, Message: message}); err != nil {
		// Headers are already sent; all we can do is log it.
		slog.Error("failed to encode JSON error response", slog.String("error", err.Error()))
	}
}
