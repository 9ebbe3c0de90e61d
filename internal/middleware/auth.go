package middleware

import (
	"net/http"

	"rx-vendas/internal/auth"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/transport"
	"rx-vendas/internal/utils"
)

// TokenMiddleware carries the operator's bearer token (header or authToken
// cookie) into the request context. It never rejects: the backend decides
// whether the token is good. The unverified subject only tags log lines.
func TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractAccessToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := transport.WithToken(r.Context(), token)
		if sub := auth.Subject(token); sub != "" {
			ctx = logger.WithOperator(ctx, sub)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireToken answers 401 for requests that reach the backend without a token.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := transport.TokenFrom(r.Context()); !ok {
			utils.WriteJSONError(w, "no auth token found", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
