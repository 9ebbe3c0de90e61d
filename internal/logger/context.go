package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	operatorKey  ctxKey = "operator"
	sessionIDKey ctxKey = "session_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// WithOperator tags log lines with the operator named by the bearer token.
// The value is unverified and must only ever be used for logging.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

func OperatorFrom(ctx context.Context) string {
	return stringFrom(ctx, operatorKey)
}

// WithSessionID tags log lines with the composition session being worked on.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFrom(ctx context.Context) string {
	return stringFrom(ctx, sessionIDKey)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger with request_id, operator and
// session_id added when the context carries them.
func FromCtx(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, 3)
	if v := RequestIDFrom(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := OperatorFrom(ctx); v != "" {
		fields = append(fields, zap.String("operator", v))
	}
	if v := SessionIDFrom(ctx); v != "" {
		fields = append(fields, zap.String("session_id", v))
	}

	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}
