package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/case-runner/internal/model"
	"github.com/sakif/case-runner/internal/repository"
)

// contextKey is unexported so only this package can read or write the
// authenticated user in a request context.
type contextKey string

const userKey contextKey = "user"

// RequireAuth guards protected routes.
//
// It extracts the token from the "token" cookie (or, for non-browser
// clients, an Authorization: Bearer header), validates the signature and
// expiry, resolves the subject to a User through the repository, and stores
// the full User in the request context. Any failure — missing token, bad
// signature, expiry, or a subject that no longer resolves to an account —
// stops the chain with 401 and the standard failure envelope.
func RequireAuth(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				unauthorized(w, "You are not logged in")
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				// The token was valid but the account is gone.
				unauthorized(w, "The user belonging to this token no longer exists")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user placed in the context by
// RequireAuth. ok is false on routes the middleware did not run on.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// extractToken prefers the cookie; the bearer header is the fallback for
// API clients that don't hold a cookie jar.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":"fail","message":"` + message + `"}`))
}
