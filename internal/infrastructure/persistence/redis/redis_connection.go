// Package redis provides Redis connection management and the snapshot cache
// of persisted final scores. It supports standalone and cluster deployments
// through go-redis' UniversalClient.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	config *config.RedisConfig
	Client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a new Redis connection manager instance.
// A single address yields a standalone client; several yield a cluster client.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// NewRedisConnectionFromClient wraps an already constructed client, e.g. one
// pointed at miniredis in tests.
func NewRedisConnectionFromClient(client redis.UniversalClient, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: &config.RedisConfig{Enabled: true},
		Client: client,
		logger: log.WithComponent("redis"),
	}
}

// Connect establishes the Redis connection and validates connectivity.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	if rc.Client != nil {
		rc.logger.Warn(ctx, "Redis connection already initialized")
		return nil
	}
	if len(rc.config.Addresses) == 0 {
		return errors.ErrInvalidConfiguration("redis.addresses is empty")
	}

	poolSize := rc.config.PoolSize
	if poolSize == 0 {
		poolSize = 10
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           rc.config.Addresses,
		Password:        rc.config.Password,
		DB:              rc.config.DB,
		PoolSize:        poolSize,
		MinIdleConns:    rc.config.MinIdleConns,
		ConnMaxIdleTime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err, logger.Fields{"addrs": rc.config.Addresses})
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	rc.Client = client
	rc.logger.Info(ctx, "Redis connection established successfully", logger.Fields{
		"addrs":     rc.config.Addresses,
		"pool_size": poolSize,
	})
	return nil
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.Client == nil {
		return fmt.Errorf("redis connection not initialized")
	}
	if err := rc.Client.Ping(ctx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err)
		return err
	}
	return nil
}

// HealthCheck performs comprehensive health check on Redis connection.
func (rc *RedisConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	if rc.Client == nil {
		return nil, fmt.Errorf("redis connection not initialized")
	}

	health := make(map[string]interface{})
	start := time.Now()
	err := rc.Client.Ping(ctx).Err()
	health["connected"] = err == nil
	health["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		health["error"] = err.Error()
		return health, err
	}

	stats := rc.Client.PoolStats()
	health["pool_hits"] = stats.Hits
	health["pool_misses"] = stats.Misses
	health["total_conns"] = stats.TotalConns
	health["idle_conns"] = stats.IdleConns
	return health, nil
}

// Close gracefully closes Redis connection and releases resources.
func (rc *RedisConnection) Close() error {
	if rc.Client == nil {
		return nil
	}
	if err := rc.Client.Close(); err != nil {
		rc.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	rc.Client = nil
	rc.logger.Info(context.Background(), "Redis connection closed successfully")
	return nil
}
