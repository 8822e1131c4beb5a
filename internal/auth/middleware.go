package auth

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values this middleware stores.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth enforces authentication on protected routes.
//
// The session token is accepted from either the Authorization header
// ("Bearer <jwt>") or the "token" cookie. On success the username from the
// token's Subject claim is stored in the request context; otherwise the
// chain stops with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"unauthorized","message":"valid authentication required"}`+"\n")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username stored by
// RequireAuth. Returns ("", false) for anonymous requests.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok && name != ""
}

func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, found := strings.CutPrefix(h, "Bearer "); found {
			return tokens.Validate(strings.TrimSpace(raw))
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
