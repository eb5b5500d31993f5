package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureKeyPrefix = "sjf:"

// Config holds failure limiter tuning parameters.
type Config struct {
	MaxFailures int
	Window      time.Duration
}

// Limiter counts failed token verifications per subject using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Acquire counts one verification attempt for subject and returns [ErrRateLimited]
// once the window total exceeds MaxFailures. The counter is incremented before it is
// compared, so concurrent attempts cannot all slip under the budget. Callers Reset
// after a token verifies, which leaves only failures counted.
func (l *Limiter) Acquire(ctx context.Context, subject string) (int, error) {
	count, err := l.incrementWithTTL(ctx, failureKey(subject), l.config.Window)
	if err != nil {
		return 0, err
	}
	if count > int64(l.config.MaxFailures) {
		return int(count), ErrRateLimited
	}
	return int(count), nil
}

// Reset clears the failure counter for subject.
// Called after a token verifies.
func (l *Limiter) Reset(ctx context.Context, subject string) error {
	if err := l.redis.Del(ctx, failureKey(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the current failure count for subject. Missing keys count zero.
func (l *Limiter) Failures(ctx context.Context, subject string) (int, error) {
	count, err := l.redis.Get(ctx, failureKey(subject)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func failureKey(subject string) string {
	return failureKeyPrefix + subject
}
