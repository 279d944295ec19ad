package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/sakif/audio-repo/internal/auth"
	"github.com/sakif/audio-repo/internal/service"
)

// AuthHandler manages the Yandex OAuth login flow.
//
//	HandleYandexLogin    → redirect the browser to Yandex's authorization page
//	HandleYandexCallback → verify state, exchange the code, issue a bearer token
type AuthHandler struct {
	yandex  *auth.YandexProvider
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they are constructed.
func NewAuthHandler(yandex *auth.YandexProvider, authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		yandex:  yandex,
		authSvc: authSvc,
		logger:  logger,
	}
}

// tokenResponse is the callback's success body. The shape follows the
// OAuth bearer convention so clients can treat us like any token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleYandexLogin redirects the user to Yandex's authorization page.
//
// HTTP: GET /auth/yandex/login
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback only proceeds when Yandex echoes the same value back.
func (h *AuthHandler) HandleYandexLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.yandex.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleYandexCallback completes the OAuth login flow.
//
// HTTP: GET /auth/yandex/callback?code=xxx&state=yyy
//
// Flow: verify the state cookie, exchange the code for the Yandex
// profile, find-or-create the user, respond with the issued access
// token.
func (h *AuthHandler) HandleYandexCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Error(w, "authorization denied", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	yaUser, err := h.yandex.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Yandex exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadRequest)
		return
	}

	result, err := h.authSvc.LoginOrRegisterYandex(r.Context(), yaUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.String("yandexID", yaUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}
