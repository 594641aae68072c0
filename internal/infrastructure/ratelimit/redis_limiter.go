// Package ratelimit provides a request budget shared by every replica through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// Limiter decides whether a client may proceed and, if not, how long it should wait.
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, time.Duration)
}

// Result is the outcome of one bucket check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Config holds limiter configuration.
type Config struct {
	// RequestsPerSecond is the refill rate of each client bucket
	RequestsPerSecond float64
	// Burst is the bucket capacity
	Burst int64
	// KeyPrefix is the Redis key prefix
	KeyPrefix string
}

// Lua script for atomic token bucket operations.
// Returns {allowed, remaining, wait_ms}.
const tokenBucketLuaScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local requested = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
local wait_ms = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    wait_ms = math.ceil((requested - tokens) / rate * 1000)
end

local full_ms = math.ceil((capacity - tokens) / rate * 1000)
redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('PEXPIRE', key, full_ms + 60000)

return {allowed, math.floor(tokens), wait_ms}
`

// RedisLimiter keeps one token bucket per client in Redis so that every
// replica draws from the same budget. When Redis fails the request is
// decided by the fallback limiter instead.
type RedisLimiter struct {
	client   redis.UniversalClient
	config   Config
	script   *redis.Script
	fallback Limiter
	logger   logger.Logger
	now      func() time.Time
}

// NewRedisLimiter creates a new Redis-based rate limiter.
//
// Parameters:
//   - client: Redis client
//   - cfg: rate and burst per client
//   - fallback: limiter consulted when Redis is unreachable; nil fails open
//   - log: Logger instance
func NewRedisLimiter(client redis.UniversalClient, cfg Config, fallback Limiter, log logger.Logger) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.ErrInvalidConfiguration("redis client is required")
	}
	if cfg.RequestsPerSecond <= 0 {
		return nil, errors.ErrInvalidConfiguration("rate_limit.requests_per_second must be positive")
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "gridrisk:ratelimit"
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}

	rl := &RedisLimiter{
		client:   client,
		config:   cfg,
		script:   redis.NewScript(tokenBucketLuaScript),
		fallback: fallback,
		logger:   log.WithComponent("rate_limiter"),
		now:      time.Now,
	}

	rl.logger.Info(context.Background(), "Redis rate limiter initialized", logger.Fields{
		"requests_per_second": cfg.RequestsPerSecond,
		"burst":               cfg.Burst,
		"local_fallback":      fallback != nil,
	})
	return rl, nil
}

// Allow implements Limiter.
func (rl *RedisLimiter) Allow(ctx context.Context, client string) (bool, time.Duration) {
	res, err := rl.Check(ctx, client, 1)
	if err != nil {
		rl.logger.Warn(ctx, "rate limit check failed, using local fallback", logger.Fields{
			"client": client,
			"error":  err.Error(),
		})
		if rl.fallback == nil {
			return true, 0
		}
		return rl.fallback.Allow(ctx, client)
	}
	return res.Allowed, res.RetryAfter
}

// Check takes n tokens from the client's bucket.
func (rl *RedisLimiter) Check(ctx context.Context, client string, n int64) (*Result, error) {
	raw, err := rl.script.Run(ctx, rl.client, []string{rl.buildKey(client)},
		rl.config.Burst, rl.config.RequestsPerSecond, n, rl.now().UnixMilli()).Result()
	if err != nil {
		return nil, errors.ErrCache("ratelimit", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) < 3 {
		return nil, errors.ErrCache("ratelimit", fmt.Errorf("unexpected script result %T", raw))
	}
	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	waitMs, _ := values[2].(int64)

	return &Result{
		Allowed:    allowed == 1,
		Remaining:  remaining,
		RetryAfter: time.Duration(waitMs) * time.Millisecond,
	}, nil
}

// Reset drops the client's bucket.
func (rl *RedisLimiter) Reset(ctx context.Context, client string) error {
	if err := rl.client.Del(ctx, rl.buildKey(client)).Err(); err != nil {
		return errors.ErrCache("ratelimit_reset", err)
	}
	return nil
}

func (rl *RedisLimiter) buildKey(client string) string {
	return fmt.Sprintf("%s:%s", rl.config.KeyPrefix, client)
}

//Personal.AI order the ending
