package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cashvelo/internal/security"
	"cashvelo/internal/webutil"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens *security.TokenService
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth is middleware that requires a valid bearer session token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.tokens.VerifySessionToken(bearerToken(r))
		if err != nil {
			if errors.Is(err, security.ErrTokenMissing) {
				webutil.RespondWithError(w, http.StatusUnauthorized, MsgAccessTokenRequired)
				return
			}
			webutil.RespondWithError(w, http.StatusForbidden, MsgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(webutil.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetIdentityFromContext retrieves the caller identity set by RequireAuth
func GetIdentityFromContext(ctx context.Context) (*security.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*security.Identity)
	return identity, ok && identity != nil
}

// requireIdentity is GetIdentityFromContext for handlers mounted behind RequireAuth
func requireIdentity(r *http.Request) (*security.Identity, error) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		return nil, webutil.ErrUnauthorized(MsgAccessTokenRequired)
	}
	return identity, nil
}
