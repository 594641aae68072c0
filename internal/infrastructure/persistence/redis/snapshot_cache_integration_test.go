//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/redis"
	"github.com/turtacn/gridrisk/pkg/logger"
)

func TestSnapshotCacheAgainstRedis(t *testing.T) {
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.Run("redis", "7-alpine", nil)
	require.NoError(t, err)
	defer func() { _ = pool.Purge(resource) }()

	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))
	require.NoError(t, pool.Retry(func() error {
		client := goredis.NewClient(&goredis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	}))

	ctx := context.Background()
	conn := redis.NewRedisConnection(&config.RedisConfig{Enabled: true, Addresses: []string{addr}}, logger.NewNoopLogger())
	require.NoError(t, conn.Connect(ctx))
	defer conn.Close()

	cache := redis.NewSnapshotCache(conn, time.Minute, logger.NewNoopLogger())
	require.NoError(t, cache.PutScores(ctx, map[string]float64{"E-1": 77.5}))

	scores, err := cache.GetScores(ctx, []string{"E-1", "E-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"E-1": 77.5}, scores)

	health, err := conn.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, health["connected"])
}
