package auth

import (
	"context"
	"net/http"
	"strings"

	"taskhub/internal/apperr"
)

type contextKey string

const userContextKey contextKey = "taskhub_user"

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok
}

// Middleware resolves the bearer token to the live principal and stores it in
// the request context. The store lookup means a token for a deleted or
// deactivated user is rejected here, not deep in a handler.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				apperr.Write(w, apperr.Authentication("missing_token", "missing bearer token"))
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")
			user, err := svc.Resolve(r.Context(), token)
			if err != nil {
				apperr.Write(w, err)
				return
			}
			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
