// Package handler contains the HTTP handlers. Handlers parse requests,
// call services, and translate the results (and domain errors) to JSON.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/audio-repo/internal/httperr"
)

// writeJSON sends a JSON response with the given status code. Headers
// and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError sends the JSON body for a domain error. The status mapping
// lives in httperr, shared with the authentication middleware.
func writeError(w http.ResponseWriter, err error) {
	httperr.Write(w, err)
}
