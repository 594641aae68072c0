// Package snapshot resolves previously persisted final scores through three
// layers: an in-process cache, an optional shared cache and the profile store.
package snapshot

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const (
	LayerMemory   = "memory"
	LayerShared   = "redis"
	LayerDatabase = "postgres"
)

// TieredStore implements repository.ScoreSnapshot. A failing shared cache
// degrades to the database; a failing database fails the lookup.
type TieredStore struct {
	l1      *cache.Cache
	l1TTL   time.Duration
	l2      repository.ScoreSnapshot
	source  repository.RiskProfileRepository
	metrics service.Metrics
	logger  logger.Logger
}

var _ repository.ScoreSnapshot = (*TieredStore)(nil)

// NewTieredStore builds the store. shared may be nil when Redis is disabled.
func NewTieredStore(source repository.RiskProfileRepository, shared repository.ScoreSnapshot, l1TTL time.Duration, log logger.Logger, metrics service.Metrics) *TieredStore {
	if l1TTL <= 0 {
		l1TTL = constants.SnapshotL1TTL
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &TieredStore{
		l1:      cache.New(l1TTL, 2*l1TTL),
		l1TTL:   l1TTL,
		l2:      shared,
		source:  source,
		metrics: metrics,
		logger:  log.WithComponent("snapshot"),
	}
}

// GetScores returns every score found in any layer. Ids unknown to all layers are absent.
func (s *TieredStore) GetScores(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(entityIDs))
	missing := make([]string, 0, len(entityIDs))

	for _, id := range entityIDs {
		if _, done := scores[id]; done {
			continue
		}
		if v, found := s.l1.Get(id); found {
			scores[id] = v.(float64)
			s.metrics.RecordSnapshotLookup(LayerMemory, true)
			continue
		}
		s.metrics.RecordSnapshotLookup(LayerMemory, false)
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return scores, nil
	}

	if s.l2 != nil {
		shared, err := s.l2.GetScores(ctx, missing)
		if err != nil {
			s.logger.Warn(ctx, "Shared snapshot cache unavailable, falling back to database", logger.Fields{"error": err.Error()})
		} else {
			missing = s.absorb(scores, missing, shared, LayerShared)
		}
		if len(missing) == 0 {
			return scores, nil
		}
	}

	persisted, err := s.source.GetFinalScores(ctx, missing)
	if err != nil {
		return nil, err
	}
	s.absorb(scores, missing, persisted, LayerDatabase)

	if s.l2 != nil && len(persisted) > 0 {
		if err := s.l2.PutScores(ctx, persisted); err != nil {
			s.logger.Warn(ctx, "Failed to backfill shared snapshot cache", logger.Fields{"error": err.Error()})
		}
	}
	return scores, nil
}

// absorb copies found scores into dst and the in-process cache and returns the ids still missing.
func (s *TieredStore) absorb(dst map[string]float64, ids []string, found map[string]float64, layer string) []string {
	var still []string
	for _, id := range ids {
		v, ok := found[id]
		s.metrics.RecordSnapshotLookup(layer, ok)
		if !ok {
			still = append(still, id)
			continue
		}
		dst[id] = v
		s.l1.Set(id, v, s.l1TTL)
	}
	return still
}

// PutScores refreshes the caches after a batch. The database is written by
// the profile repository, not here.
func (s *TieredStore) PutScores(ctx context.Context, scores map[string]float64) error {
	for id, v := range scores {
		s.l1.Set(id, v, s.l1TTL)
	}
	if s.l2 == nil {
		return nil
	}
	return s.l2.PutScores(ctx, scores)
}

// Flush empties the in-process layer, e.g. after a table reload.
func (s *TieredStore) Flush() {
	s.l1.Flush()
}
