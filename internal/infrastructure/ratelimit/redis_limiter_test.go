package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/pkg/logger"
)

type countingLimiter struct {
	calls   int
	allowed bool
}

func (c *countingLimiter) Allow(ctx context.Context, client string) (bool, time.Duration) {
	c.calls++
	if c.allowed {
		return true, 0
	}
	return false, 2 * time.Second
}

func newTestLimiter(t *testing.T, fallback Limiter) (*RedisLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl, err := NewRedisLimiter(client, Config{RequestsPerSecond: 1, Burst: 2}, fallback, logger.NewNoopLogger())
	require.NoError(t, err)

	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, mr, &now
}

func TestRedisLimiter_Allow(t *testing.T) {
	rl, _, now := newTestLimiter(t, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, wait := rl.Allow(ctx, "10.0.0.1")
		assert.True(t, allowed, "request %d", i)
		assert.Zero(t, wait)
	}

	allowed, wait := rl.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, time.Second, wait)

	allowed, _ = rl.Allow(ctx, "10.0.0.2")
	assert.True(t, allowed, "buckets are per client")

	*now = now.Add(time.Second)
	allowed, _ = rl.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed, "one token refilled after a second")
}

func TestRedisLimiter_CheckReportsRemaining(t *testing.T) {
	rl, _, _ := newTestLimiter(t, nil)

	res, err := rl.Check(context.Background(), "c", 1)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)

	res, err = rl.Check(context.Background(), "c", 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 4*time.Second, res.RetryAfter)
}

func TestRedisLimiter_Reset(t *testing.T) {
	rl, _, _ := newTestLimiter(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rl.Allow(ctx, "c")
	}
	require.NoError(t, rl.Reset(ctx, "c"))

	allowed, _ := rl.Allow(ctx, "c")
	assert.True(t, allowed)
}

func TestRedisLimiter_FallbackOnRedisFailure(t *testing.T) {
	fallback := &countingLimiter{allowed: false}
	rl, mr, _ := newTestLimiter(t, fallback)
	mr.Close()

	allowed, wait := rl.Allow(context.Background(), "c")
	assert.False(t, allowed)
	assert.Equal(t, 2*time.Second, wait)
	assert.Equal(t, 1, fallback.calls)
}

func TestRedisLimiter_FailsOpenWithoutFallback(t *testing.T) {
	rl, mr, _ := newTestLimiter(t, nil)
	mr.Close()

	allowed, _ := rl.Allow(context.Background(), "c")
	assert.True(t, allowed)
}

func TestNewRedisLimiter_Validation(t *testing.T) {
	_, err := NewRedisLimiter(nil, Config{RequestsPerSecond: 1}, nil, nil)
	assert.Error(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	_, err = NewRedisLimiter(client, Config{}, nil, nil)
	assert.Error(t, err)
}
