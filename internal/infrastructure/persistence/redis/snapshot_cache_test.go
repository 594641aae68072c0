package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/redis"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/logger"
)

type SnapshotCacheTestSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	cache *redis.SnapshotCache
	ctx   context.Context
}

func (s *SnapshotCacheTestSuite) SetupTest() {
	var err error
	s.mr, err = miniredis.Run()
	s.Require().NoError(err)

	client := goredis.NewClient(&goredis.Options{Addr: s.mr.Addr()})
	conn := redis.NewRedisConnectionFromClient(client, logger.NewNoopLogger())
	s.cache = redis.NewSnapshotCache(conn, time.Hour, logger.NewNoopLogger())
	s.ctx = context.Background()
}

func (s *SnapshotCacheTestSuite) TearDownTest() {
	s.mr.Close()
}

func TestSnapshotCacheTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotCacheTestSuite))
}

func (s *SnapshotCacheTestSuite) TestPutAndGet() {
	s.Require().NoError(s.cache.PutScores(s.ctx, map[string]float64{"E-1": 82.25, "E-2": 10}))

	scores, err := s.cache.GetScores(s.ctx, []string{"E-1", "E-2", "E-3"})
	s.Require().NoError(err)
	s.Equal(map[string]float64{"E-1": 82.25, "E-2": 10}, scores)
}

func (s *SnapshotCacheTestSuite) TestEntriesExpire() {
	s.Require().NoError(s.cache.PutScores(s.ctx, map[string]float64{"E-1": 50}))
	s.True(s.mr.Exists(constants.SnapshotKeyPrefix + "E-1"))

	s.mr.FastForward(2 * time.Hour)

	scores, err := s.cache.GetScores(s.ctx, []string{"E-1"})
	s.Require().NoError(err)
	s.Empty(scores)
}

func (s *SnapshotCacheTestSuite) TestCorruptEntryIsSkipped() {
	s.Require().NoError(s.mr.Set(constants.SnapshotKeyPrefix+"E-1", "not-a-number"))
	s.Require().NoError(s.cache.PutScores(s.ctx, map[string]float64{"E-2": 30}))

	scores, err := s.cache.GetScores(s.ctx, []string{"E-1", "E-2"})
	s.Require().NoError(err)
	s.Equal(map[string]float64{"E-2": 30}, scores)
}

func (s *SnapshotCacheTestSuite) TestInvalidate() {
	s.Require().NoError(s.cache.PutScores(s.ctx, map[string]float64{"E-1": 50, "E-2": 60}))
	s.Require().NoError(s.cache.Invalidate(s.ctx, "E-1"))

	scores, err := s.cache.GetScores(s.ctx, []string{"E-1", "E-2"})
	s.Require().NoError(err)
	s.Equal(map[string]float64{"E-2": 60}, scores)
}

func (s *SnapshotCacheTestSuite) TestUnavailableRedis() {
	s.mr.Close()

	_, err := s.cache.GetScores(s.ctx, []string{"E-1"})
	s.Error(err)
	s.Error(s.cache.PutScores(s.ctx, map[string]float64{"E-1": 1}))
}

func (s *SnapshotCacheTestSuite) TestEmptyInputs() {
	scores, err := s.cache.GetScores(s.ctx, nil)
	s.NoError(err)
	s.Empty(scores)
	s.NoError(s.cache.PutScores(s.ctx, nil))
}
