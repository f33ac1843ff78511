package middleware

import (
	"net/http"
	"sync"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter hands out one token bucket per key.
type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) Limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}
	return limiter
}

// RateLimitByUser throttles authenticated callers. r is requests per second
// and b the burst. Must run after AuthRequired.
func RateLimitByUser(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiter := NewKeyedRateLimiter(r, b)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			actor, ok := ActorFromContext(req.Context())
			if !ok {
				next.ServeHTTP(w, req)
				return
			}
			if !limiter.Limiter(actor.UserID).Allow() {
				response.TooManyRequests(w, "Too many requests")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
