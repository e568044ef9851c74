package auth

import (
	"context"

	"github.com/yntoyg/covenant-api/pkg/user"
)

type contextKey struct{}

var userKey contextKey

// WithUser returns a context carrying the resolved member.
func WithUser(ctx context.Context, usr *user.User) context.Context {
	return context.WithValue(ctx, userKey, usr)
}

// UserFromContext returns the member resolved by the session guard, or nil
// when the request is anonymous.
func UserFromContext(ctx context.Context) *user.User {
	usr, _ := ctx.Value(userKey).(*user.User)
	return usr
}
