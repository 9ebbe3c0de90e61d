package transport

import (
	"context"
)

type ctxKey string

const bearerTokenKey ctxKey = "bearerToken"

// WithToken stores the operator's bearer token for outbound backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
