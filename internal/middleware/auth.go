package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/httperr"
	"github.com/sakif/audio-repo/internal/model"
	"github.com/sakif/audio-repo/internal/service"
)

// contextKey is an unexported type for context keys in this package, so
// no other package can read or shadow the values we store.
type contextKey string

const userKey contextKey = "user"

// RequireUser enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, resolves it
// through AuthService.Authenticate, and stores the resolved user in the
// request context. A missing or bad token stops the chain with 401; a
// valid token for an inactive account stops it with 403.
func RequireUser(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				httperr.Write(w, apperror.Unauthorized("could not validate credentials"))
				return
			}

			user, err := authSvc.Authenticate(r.Context(), tokenStr)
			if err != nil {
				httperr.Write(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user placed in the context
// by RequireUser. Returns (nil, false) when the request never passed
// through the middleware.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
