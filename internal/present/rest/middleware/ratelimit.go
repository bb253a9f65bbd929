package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
)

// RateLimiter applies a fixed window per client IP, backed by expiring
// counters.
type RateLimiter struct {
	limit   int
	window  time.Duration
	buckets *cache.Cache
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: cache.New(window, 2*window),
		now:     time.Now,
	}
}

func (rl *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := fmt.Sprintf("%s:%d", c.RealIP(), rl.now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.buckets.IncrementInt64(key, 1)
		if err != nil {
			// first request of this window. Add fails if a concurrent
			// request created the bucket in the meantime; increment that
			// one instead of resetting it.
			if rl.buckets.Add(key, int64(1), cache.DefaultExpiration) == nil {
				count = 1
			} else {
				count, _ = rl.buckets.IncrementInt64(key, 1)
			}
		}
		if count > int64(rl.limit) {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
		}
		return next(c)
	}
}
