package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func ExtractAccessToken(r *http.Request) string {
	// 1️⃣ Authorization header (preferred)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// 2️⃣ Cookie (fallback, same name the console stores it under)
	if cookie, err := r.Cookie("authToken"); err == nil {
		return cookie.Value
	}

	return ""
}

// TokenExpired reports whether token is a JWT whose exp claim is before now.
// The signature is not verified: the backend stays the authority, this only
// avoids sending a request that is bound to be rejected. Opaque tokens and
// JWTs without exp are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Subject returns the unverified "sub" claim of a JWT, or "" for opaque
// tokens. Only used to key per-operator rate limits and log lines.
func Subject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
