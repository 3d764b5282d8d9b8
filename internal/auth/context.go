package auth

import (
	"context"

	"taskManager/internal/models/user"
)

type callerKey struct{}

func WithCaller(ctx context.Context, caller user.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the authenticated caller, false for anonymous
// requests.
func CallerFromContext(ctx context.Context) (user.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(user.Caller)
	return caller, ok
}
