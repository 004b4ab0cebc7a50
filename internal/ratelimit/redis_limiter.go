// Package ratelimit implements a fixed-window request limiter stored in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the state of a client's window after a hit.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
}

// NewRedisLimiter connects to redisURL and verifies the connection.
func NewRedisLimiter(redisURL string, max int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisLimiterWithClient(client, max, window), nil
}

func NewRedisLimiterWithClient(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:",
		max:    max,
		window: window,
	}
}

// Hit counts one request for key inside the current window. The counter and
// its TTL are read in one MULTI; a counter without a TTL gets one, so a key
// whose expiry was never set cannot block a client for good.
func (l *RedisLimiter) Hit(ctx context.Context, key string) (Result, error) {
	k := l.prefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("count request: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("open window: %w", err)
		}
		resetIn = l.window
	}

	count := int(incr.Val())
	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.max,
		Remaining: remaining,
		ResetIn:   resetIn,
	}, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
