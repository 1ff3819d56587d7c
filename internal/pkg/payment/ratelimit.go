package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client identity in fixed time-window
// buckets. Callers must not process the payload when Allowed is false.
type RateLimiter interface {
	Allow(ctx context.Context, identity, action string) (RateLimitResult, error)
}

// RedisRateLimiter implements RateLimiter on a shared redis counter so the
// limit holds across all application instances.
type RedisRateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRedisRateLimiter creates a limiter allowing max requests per window.
func NewRedisRateLimiter(client *redis.Client, max int64, window time.Duration) *RedisRateLimiter {
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{client: client, max: max, window: window}
}

// Allow increments the current window bucket and reports the counter state.
// A redis error is returned to the caller, which fails open: losing a
// legitimate payment confirmation is worse than letting a burst through.
func (r *RedisRateLimiter) Allow(ctx context.Context, identity, action string) (RateLimitResult, error) {
	bucket, reset := windowBucket(time.Now(), r.window)
	key := rateLimitKey(action, identity, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{Allowed: true}, err
	}

	count := incr.Val()
	return RateLimitResult{
		Allowed:      count <= r.max,
		CurrentCount: count,
		ResetTime:    reset,
	}, nil
}

func rateLimitKey(action, identity string, bucket int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", action, identity, bucket)
}

// windowBucket returns the bucket index for now and the instant the bucket
// rolls over.
func windowBucket(now time.Time, window time.Duration) (int64, time.Time) {
	secs := int64(window.Seconds())
	bucket := now.Unix() / secs
	return bucket, time.Unix((bucket+1)*secs, 0)
}
