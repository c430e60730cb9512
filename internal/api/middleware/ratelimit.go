package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/filmlab/photofx/internal/core/domain"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimitConfig configures the per-user token bucket.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiters hands out one token bucket per user id.
type userLimiters struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
	lastGC   time.Time
}

func newUserLimiters(cfg RateLimitConfig) *userLimiters {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &userLimiters{
		limiters: make(map[string]*userLimiter),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (l *userLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > limiterIdleTTL {
		for k, ul := range l.limiters {
			if now.Sub(ul.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	ul, ok := l.limiters[key]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

// RateLimit throttles requests per authenticated user, falling back to the
// client IP for anonymous requests. Must run after Auth.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiters := newUserLimiters(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !limiters.allow(key) {
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
