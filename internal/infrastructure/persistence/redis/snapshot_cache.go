package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// SnapshotCache keeps persisted final scores in Redis, one string key per entity.
type SnapshotCache struct {
	redis *RedisConnection
	ttl   time.Duration
	log   logger.Logger
}

var _ repository.ScoreSnapshot = (*SnapshotCache)(nil)

// NewSnapshotCache creates a Redis-backed score snapshot. A non-positive ttl
// uses constants.SnapshotCacheTTL.
func NewSnapshotCache(conn *RedisConnection, ttl time.Duration, log logger.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = constants.SnapshotCacheTTL
	}
	return &SnapshotCache{redis: conn, ttl: ttl, log: log.WithComponent("snapshot_cache")}
}

func snapshotKey(entityID string) string {
	return constants.SnapshotKeyPrefix + entityID
}

// GetScores reads the cached scores. Missing or corrupt entries are absent
// from the result.
func (c *SnapshotCache) GetScores(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(entityIDs))
	if len(entityIDs) == 0 {
		return scores, nil
	}

	// MGET spans slots on a cluster client, so read through a pipeline.
	pipe := c.redis.Client.Pipeline()
	cmds := make([]*redis.StringCmd, len(entityIDs))
	for i, id := range entityIDs {
		cmds[i] = pipe.Get(ctx, snapshotKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.ErrCache("get_scores", err)
	}

	for i, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(val, 64)
		if err != nil {
			c.log.Warn(ctx, "Discarding corrupt snapshot entry", logger.Fields{
				"entity_id": entityIDs[i],
				"value":     val,
			})
			continue
		}
		scores[entityIDs[i]] = score
	}
	return scores, nil
}

// PutScores writes the scores with the configured TTL.
func (c *SnapshotCache) PutScores(ctx context.Context, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}
	pipe := c.redis.Client.Pipeline()
	for id, score := range scores {
		pipe.Set(ctx, snapshotKey(id), strconv.FormatFloat(score, 'f', -1, 64), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.ErrCache("put_scores", err)
	}
	return nil
}

// Invalidate drops the cached scores of the given entities.
func (c *SnapshotCache) Invalidate(ctx context.Context, entityIDs ...string) error {
	if len(entityIDs) == 0 {
		return nil
	}
	keys := make([]string, len(entityIDs))
	for i, id := range entityIDs {
		keys[i] = snapshotKey(id)
	}
	if err := c.redis.Client.Del(ctx, keys...).Err(); err != nil {
		return errors.ErrCache("invalidate", err)
	}
	return nil
}
