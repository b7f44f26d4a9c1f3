package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crosswirehq/crosswire/internal/api/apierr"
	"github.com/crosswirehq/crosswire/internal/identity"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Auth creates authentication middleware
func Auth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetIdentity returns the authenticated identity from the request context
func GetIdentity(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityContextKey).(*identity.Identity)
	return ident
}

// MustGetIdentity returns the authenticated identity or panics
func MustGetIdentity(ctx context.Context) *identity.Identity {
	ident := GetIdentity(ctx)
	if ident == nil {
		panic("no identity in context - auth middleware not applied?")
	}
	return ident
}
