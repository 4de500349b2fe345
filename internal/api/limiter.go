package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/aegis-ideas/pkg/redis"
)

// UserLimiter limits generate calls per user per minute.
// Redis sliding window when enabled, otherwise a token bucket per user.
type UserLimiter struct {
	redis  *redis.RateLimiter
	limit  int
	window time.Duration

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewUserLimiter creates a limiter allowing perMinute calls; 0 disables it
func NewUserLimiter(limiter *redis.RateLimiter, perMinute int) *UserLimiter {
	return &UserLimiter{
		redis:  limiter,
		limit:  perMinute,
		window: time.Minute,
		local:  make(map[string]*rate.Limiter),
	}
}

// Allow reports whether userID may start another generation
func (l *UserLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	if l.redis.Enabled() {
		allowed, _, err := l.redis.Allow(ctx, redis.GenerateRateLimit(userID, l.limit))
		return allowed, err
	}

	return l.localLimiter(userID).Allow(), nil
}

func (l *UserLimiter) localLimiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.local[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.local[userID] = limiter
	}
	return limiter
}
