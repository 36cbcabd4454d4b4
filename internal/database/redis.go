package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contactrelay/contactrelay/internal/config"
)

// Redis wraps the Redis client used for rate limiting
type Redis struct {
	*redis.Client
}

// NewRedis connects to the server described by cfg.URL
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

// HealthCheck verifies the Redis connection is healthy
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.Ping(ctx).Err()
}

// Hit increments the counter at key and returns the new count and its
// remaining TTL. The window starts on the first hit. A key found without an
// expiry, such as one whose Expire was lost to a canceled request, gets the
// window applied again so it cannot block a client forever.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, 0, err
	}

	count, remaining := incr.Val(), ttl.Val()
	if remaining < 0 {
		if err := r.Client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		remaining = window
	}
	return count, remaining, nil
}
