package middleware

import (
	"context"
	"net/http"

	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type contextKey string

const (
	ContextKeyUsername = contextKey("username")
	ContextKeyBoard    = contextKey("board")
)

// Username returns the authenticated username placed in the context by
// AuthMiddleware, or "" when the request is unauthenticated.
func Username(ctx context.Context) string {
	u, _ := ctx.Value(ContextKeyUsername).(string)
	return u
}

// AuthMiddleware gates protected endpoints. The session token is read
// from the session cookie; a missing, malformed, expired, or forged
// token all produce the same 401.
func AuthMiddleware(sessions services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(utils.SessionCookieName)
			if err != nil || c.Value == "" {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", nil,
				)
				return
			}

			username, ok := sessions.Validate(c.Value)
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUsername, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware is identical to AuthMiddleware except that it
// lets the request through unauthenticated when no cookie is present.
// An invalid token is still rejected.
func OptionalAuthMiddleware(sessions services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(utils.SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			username, ok := sessions.Validate(c.Value)
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUsername, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
