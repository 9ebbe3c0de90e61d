package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"rx-vendas/internal/logger"
	"rx-vendas/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Sale submission (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Keystroke-driven lookups
	limitLookup = rate.Limit(20)
	burstLookup = 40
)

const visitorIdle = 3 * time.Minute

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{visitors: make(map[string]*visitor)}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (rl *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		rl.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup removes visitors idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Run cleans up idle visitors every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(visitorIdle)
		}
	}
}

// Middleware checks if the request is allowed by the rate limiter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := resolveRateTier(r)

		// Tokens are not verified here, so nothing inside them may pick the
		// bucket; the client IP is the only identity.
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		// Separate quotas per tier, e.g. "ip:10.0.0.1:strict".
		key := fmt.Sprintf("ip:%s:%s", ip, tier)

		if !rl.getVisitor(key, limit, burst).Allow() {
			logger.FromCtx(r.Context()).Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.String("tier", tier),
			)
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	path := r.URL.Path

	if r.Method == http.MethodPost && strings.HasSuffix(path, "/submit") {
		return limitStrict, burstStrict, "strict"
	}

	if strings.HasPrefix(path, "/lookup/") || strings.Contains(path, "/suggest/") {
		return limitLookup, burstLookup, "lookup"
	}

	return limitGeneral, burstGeneral, "general"
}
