package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	authsupabase "craft-invoice/backend/internal/infra/auth/supabase"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type ctxKey int

const (
	userIDKey ctxKey = iota
	requestIDKey
)

// UserID returns the authenticated user id stored by Auth, or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

// Auth verifies the Authorization bearer token on every request and attaches
// the resolved user id to the context. Missing or rejected tokens answer 401;
// a provider outage answers 503 so clients retry instead of failing hard.
func Auth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			subject, err := v.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, authsupabase.ErrUnavailable) {
					writeError(w, http.StatusServiceUnavailable, "auth provider unavailable")
					return
				}
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
