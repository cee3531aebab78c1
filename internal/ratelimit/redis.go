package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "coursegen:ratelimit:"

// RedisLimiter is a fixed-window limiter shared by every process pointed at
// the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return opts, nil
}

// NewRedisLimiter connects to url and allows limit events per key per period.
func NewRedisLimiter(ctx context.Context, url string, limit int, period time.Duration) (*RedisLimiter, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisLimiter{client: client, limit: limit, period: period}, nil
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := windowKey(key, time.Now(), r.period)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// windowKey names the counter for key in the window containing t.
func windowKey(key string, t time.Time, period time.Duration) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, key, t.Truncate(period).Unix())
}

func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
