package middleware

import (
	"net/http"
	"strings"

	"github.com/fitfuel/fitfuel/internal/ctxkeys"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/fitfuel/fitfuel/internal/service"
)

// Authenticate resolves the session token from an Authorization bearer
// header or the auth cookie and puts the user in the context. Requests
// without a valid token continue anonymously.
func Authenticate(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user.PasswordHash = ""
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}

func sessionToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token), false
		}
	}
	if cookie, err := r.Cookie(service.AuthCookieName); err == nil {
		return cookie.Value, true
	}
	return "", false
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			render.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}
