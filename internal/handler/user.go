package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/audio-repo/internal/httperr"
	"github.com/sakif/audio-repo/internal/middleware"
	"github.com/sakif/audio-repo/internal/service"
)

// UserHandler serves the user-record endpoints. All routes sit behind
// the RequireUser middleware, so the resolved caller is always in the
// request context.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the caller's own record.
//
// HTTP: GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireUser, but don't panic if miswired.
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, caller)
}

// updateMeRequest is the body of PATCH /api/users/me.
type updateMeRequest struct {
	Username string `json:"username"`
}

// HandleUpdateMe changes the caller's username and returns the refreshed
// record.
//
// HTTP: PATCH /api/users/me
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, httperr.Response{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.users.UpdateUsername(r.Context(), caller, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGet returns the record with the given id: the caller's own, or
// anyone's for a superuser.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	id, err := parseUserID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, httperr.Response{
			Error:   "validation_error",
			Message: "invalid user id",
		})
		return
	}

	user, err := h.users.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete permanently removes a user record. Superuser only.
//
// HTTP: DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	id, err := parseUserID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, httperr.Response{
			Error:   "validation_error",
			Message: "invalid user id",
		})
		return
	}

	if err := h.users.Delete(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user deleted via API",
		slog.Int64("userID", id),
		slog.Int64("callerID", caller.ID),
	)
	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
