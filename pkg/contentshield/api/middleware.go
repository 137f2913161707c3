package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

type contextKey string

const userContextKey contextKey = "contentshield.user"

// IdentityMiddleware resolves the authenticated user from verified JWT claims
// and stores it in the request context. It trusts the token contents: the
// verifier middleware has already checked the signature. Requests without a
// usable identity are rejected before any handler runs.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			http.Error(w, "invalid subject claim", http.StatusUnauthorized)
			return
		}

		role := contentshield.RoleUser
		if s, ok := claims["role"].(string); ok && s != "" {
			role = contentshield.Role(s)
		}
		email, _ := claims["email"].(string)

		user := &contentshield.User{ID: userID, Email: email, Role: role}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly rejects requests from non-admin users. Must run after
// IdentityMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user, or nil when absent.
func UserFromContext(ctx context.Context) *contentshield.User {
	user, _ := ctx.Value(userContextKey).(*contentshield.User)
	return user
}

// WithUser returns a context carrying the given user. Exposed for tests.
func WithUser(ctx context.Context, user *contentshield.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
