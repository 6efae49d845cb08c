package auth

import (
	"context"

	"warbler/domain"
)

const (
	userKey privateKey = "user"
)

type privateKey string

// SetUser returns a child context carrying the authenticated user.
// Handlers receive the session identity this way instead of reading it
// from any ambient global state.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user stored in the context,
// or nil for an unauthenticated request.
func GetUser(ctx context.Context) *domain.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}
