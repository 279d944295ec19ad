package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/audio-repo/internal/httperr"
	"github.com/sakif/audio-repo/internal/middleware"
	"github.com/sakif/audio-repo/internal/service"
)

// maxUploadBytes caps a single upload at 50 MiB. The limit guards the
// multipart parse; there is no streaming path.
const maxUploadBytes = 50 << 20

// AudioHandler serves upload and listing of the caller's audio files.
type AudioHandler struct {
	audio  *service.AudioService
	logger *slog.Logger
}

// NewAudioHandler creates an AudioHandler.
func NewAudioHandler(audio *service.AudioService, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{audio: audio, logger: logger}
}

// HandleUpload stores one uploaded audio file for the caller.
//
// HTTP: POST /api/audio
// Body: multipart/form-data with a "file" part and an optional "name"
// field overriding the stored name.
func (h *AudioHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, httperr.Response{
			Error:   "validation_error",
			Message: "multipart form must include a \"file\" part",
		})
		return
	}
	defer file.Close()

	desiredName := r.FormValue("name")

	record, err := h.audio.Upload(r.Context(), file, header.Filename, desiredName, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// HandleList returns the caller's audio file records in upload order.
//
// HTTP: GET /api/audio
func (h *AudioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	files, err := h.audio.ListForOwner(r.Context(), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}
