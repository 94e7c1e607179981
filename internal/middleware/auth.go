package middleware

import (
	"context"
	"net/http"

	"server/internal/domain"
)

// SessionResolver resolves the currently signed-in user, if any.
type SessionResolver interface {
	Current() (domain.SessionUser, bool)
}

type userKey struct{}

// RequireUser guards routes that need a signed-in user. The current-session
// pointer in the store is the session mechanism; requests without one get a
// 401 before reaching the handler.
func RequireUser(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := sessions.Current()
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"authentication required"}}`))
				return
			}
			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the signed-in user placed by RequireUser.
func UserFromContext(ctx context.Context) (domain.SessionUser, bool) {
	u, ok := ctx.Value(userKey{}).(domain.SessionUser)
	return u, ok
}
