package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter keyed by client IP.
// With a Redis client the windows are shared across instances, otherwise
// they are kept in process memory.
type RateLimiter struct {
	limit  int
	window time.Duration
	redis  *redis.Client

	mu       sync.Mutex
	requests map[string]*requestInfo
}

type requestInfo struct {
	count     int
	expiresAt time.Time
}

func NewRateLimiter(limit int, window time.Duration, redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		redis:    redisClient,
		requests: make(map[string]*requestInfo),
	}
}

// RunCleanup evicts expired in-memory windows until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup(time.Now())
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, info := range rl.requests {
		if now.After(info.expiresAt) {
			delete(rl.requests, key)
		}
	}
}

// allow reports whether the request fits the window, the remaining budget and the window reset.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, int, time.Time) {
	now := time.Now()

	if rl.redis != nil {
		redisKey := "ratelimit:" + key
		pipe := rl.redis.TxPipeline()
		pipe.SetNX(ctx, redisKey, 0, rl.window)
		incr := pipe.Incr(ctx, redisKey)
		ttl := pipe.PTTL(ctx, redisKey)
		_, err := pipe.Exec(ctx)
		if err == nil {
			count := int(incr.Val())
			return count <= rl.limit, max(rl.limit-count, 0), now.Add(ttl.Val())
		}
		logger.WithError(err).Warn("rate limiter: redis unavailable, using local window")
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, exists := rl.requests[key]
	if !exists || now.After(info.expiresAt) {
		info = &requestInfo{expiresAt: now.Add(rl.window)}
		rl.requests[key] = info
	}
	if info.count >= rl.limit {
		return false, 0, info.expiresAt
	}
	info.count++
	return true, rl.limit - info.count, info.expiresAt
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.limit <= 0 {
			return c.Next()
		}

		ok, remaining, reset := rl.allow(c.UserContext(), c.IP())
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

		if !ok {
			return apperr.RateLimited(rl.limit)
		}
		return c.Next()
	}
}
