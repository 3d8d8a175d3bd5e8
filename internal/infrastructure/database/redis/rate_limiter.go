// internal/infrastructure/database/redis/rate_limiter.go
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows
type RateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, prefix: "rate_limit:"}
}

// Hit records one request for key and returns the count in the current
// window and the time until the window resets.
func (l *RateLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	ttl := pipe.PTTL(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	reset := ttl.Val()
	if reset < 0 {
		reset = window
	}
	return incr.Val(), reset, nil
}
