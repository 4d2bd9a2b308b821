package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"prepflow/possync/internal/auth"
)

var (
	limiters      = make(map[string]*rate.Limiter)
	limitersMutex sync.Mutex
)

// getLimiter returns the limiter for one caller key. Sync triggers are
// expensive downstream, so the per-caller budget is deliberately small.
func getLimiter(key string) *rate.Limiter {
	limitersMutex.Lock()
	defer limitersMutex.Unlock()

	if limiter, exists := limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(2, 10) // 2 requests/sec, burst up to 10
	limiters[key] = limiter
	return limiter
}

// RateLimitMiddleware throttles callers per account, falling back to the
// client IP for unauthenticated requests
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if claims := auth.GetAccountClaims(r.Context()); claims != nil {
			key = claims.AccountID()
		}
		if key == "" {
			key, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		limiter := getLimiter(key)
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
