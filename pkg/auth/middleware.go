package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/pkg/user"
)

// SessionStore is the narrow data-access interface the session guard needs.
type SessionStore interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

// ErrSessionNotFound must be returned by SessionStore.GetSession when no
// session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// Guard resolves the session cookie into a member and stores it on the
// request context. Missing, unknown, and expired sessions all pass through
// as anonymous; handlers that need a member reject with 401 themselves.
// Expired sessions are deleted on detection so they don't accumulate.
func Guard(store SessionStore, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			usr := resolve(r.Context(), store, cookie.Value, logger)
			if usr != nil {
				r = r.WithContext(WithUser(r.Context(), usr))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(ctx context.Context, store SessionStore, token string, logger *zap.Logger) *user.User {
	sess, err := store.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Warn("Session lookup failed", zap.Error(err))
		}
		return nil
	}

	if sess.Expired(time.Now()) {
		if err := store.DeleteSession(ctx, token); err != nil {
			logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return nil
	}

	usr, err := store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		logger.Warn("Session user lookup failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil
	}
	return usr
}
