package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, max int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	limiter, err := NewRedisLimiter("redis://"+s.Addr(), max, window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter, s
}

func TestHitAllowsUpToMax(t *testing.T) {
	limiter, _ := setupLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Hit(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d should be allowed", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Hit(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.LessOrEqual(t, res.ResetIn, time.Minute)
}

func TestHitKeysAreIndependent(t *testing.T) {
	limiter, _ := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Hit(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Hit(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestWindowResets(t *testing.T) {
	limiter, s := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := limiter.Hit(ctx, "ip")
	require.NoError(t, err)
	res, err := limiter.Hit(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	s.FastForward(2 * time.Minute)

	res, err = limiter.Hit(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewRedisLimiterBadURL(t *testing.T) {
	_, err := NewRedisLimiter("not a url", 1, time.Minute)
	assert.Error(t, err)
}

func TestHitArmsKeyWithoutTTL(t *testing.T) {
	limiter, s := setupLimiter(t, 3, time.Minute)
	ctx := context.Background()

	// a counter left behind without an expiry
	require.NoError(t, s.Set("ratelimit:1.2.3.4", "5"))
	s.FastForward(24 * time.Hour)

	res, err := limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.ResetIn)
	assert.Equal(t, time.Minute, s.TTL("ratelimit:1.2.3.4"))

	s.FastForward(time.Minute + time.Second)

	res, err = limiter.Hit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}
