package middleware

import (
	"context"
	"net/http"
	"strings"

	authdomain "github.com/saransh1220/panchakarma/internal/modules/auth/domain"
	"github.com/saransh1220/panchakarma/internal/shared/utils"
)

type contextKey string

const ContextKeyAuthState contextKey = "auth_state"

// SessionResolver turns a bearer token into an auth state.
type SessionResolver interface {
	Restore(token string) authdomain.AuthState
}

type AuthMiddleWare struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleWare {
	return &AuthMiddleWare{sessions: sessions}
}

// RequireAuth rejects requests without a valid session. The token is read
// from the Authorization header, or from the token query parameter for
// WebSocket upgrades.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		state := m.sessions.Restore(tokenStr)
		if !state.IsAuthenticated() {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuthState(r.Context(), state)))
	})
}

// FlexibleAuth resolves the session when a bearer token is present and
// proceeds as anonymous otherwise.
func (m *AuthMiddleWare) FlexibleAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := authdomain.Anonymous()
		if tokenStr := bearerToken(r); tokenStr != "" {
			state = m.sessions.Restore(tokenStr)
		}
		next.ServeHTTP(w, r.WithContext(WithAuthState(r.Context(), state)))
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithAuthState stores state in ctx.
func WithAuthState(ctx context.Context, state authdomain.AuthState) context.Context {
	return context.WithValue(ctx, ContextKeyAuthState, state)
}

// AuthStateFrom returns the state stored by the middleware, or Anonymous.
func AuthStateFrom(ctx context.Context) authdomain.AuthState {
	state, _ := ctx.Value(ContextKeyAuthState).(authdomain.AuthState)
	return state
}

func CurrentUser(ctx context.Context) (authdomain.User, bool) {
	return AuthStateFrom(ctx).User()
}
