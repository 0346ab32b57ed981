package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/yatube/utils"
)

const (
	limiterIdleTTL       = 5 * time.Minute
	limiterSweepInterval = time.Minute
)

type visitor struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute requests per IP with a burst of half of it.
func NewRateLimiter(perMinute int) *RateLimiter {
	perMinute = max(perMinute, 1)
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		visitors: map[string]*visitor{},
		now:      time.Now,
	}
}

// Allow reports whether key may perform one more request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterSweepInterval {
		rl.sweep(now)
	}
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.expires = now.Add(limiterIdleTTL)
	return v.limiter.Allow()
}

// sweep drops visitors idle past limiterIdleTTL. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, v := range rl.visitors {
		if now.After(v.expires) {
			delete(rl.visitors, k)
		}
	}
	rl.lastSweep = now
}

// RateLimit throttles state changing requests; reads always pass.
func RateLimit(perMinute int) gin.HandlerFunc {
	rl := NewRateLimiter(perMinute)
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}
		if !rl.Allow(ctx.ClientIP()) {
			if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
				utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			} else {
				ctx.String(http.StatusTooManyRequests, "Too many requests, try again later.")
			}
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
