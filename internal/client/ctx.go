package client

import "context"

var tokenCtxKey = &contextKey{"bearer-token"}

type contextKey struct {
	name string
}

// WithToken sets the bearer credential in the given context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey, token)
}

// TokenFromContext finds the bearer credential in the context, if any.
func TokenFromContext(ctx context.Context) string {
	raw, _ := ctx.Value(tokenCtxKey).(string)
	return raw
}
