package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "inviteplanner/internal/delivery/http/helpers"
	"inviteplanner/internal/domain"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	principalKey contextKey = "principal"
)

// SetUserID returns a context with the user ID set.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SetPrincipal returns a context carrying p and its user ID. Used by auth middleware.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	return SetUserID(ctx, p.UserID)
}

// PrincipalFromContext returns the authenticated principal, if present.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the principal in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			principal, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetPrincipal(r.Context(), principal))
			next(w, r)
		}
	}
}

// RequireRole returns a wrapper that only calls next when the authenticated
// principal carries role. It must run inside RequireAuth.
func RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			if !p.HasRole(role) {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "requires role "+role)
				return
			}
			next(w, r)
		}
	}
}
