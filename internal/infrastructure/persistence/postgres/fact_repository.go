package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
	"github.com/turtacn/gridrisk/pkg/utils"
)

// loadChunkSize bounds the IN list of one warehouse query.
const loadChunkSize = 500

// FactRepoImpl reads entity facts from the warehouse tables.
type FactRepoImpl struct {
	db      *gorm.DB
	logger  logger.Logger
	metrics service.Metrics
}

// NewFactRepository creates a warehouse-backed fact repository.
func NewFactRepository(db *gorm.DB, log logger.Logger, metrics service.Metrics) repository.FactRepository {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &FactRepoImpl{
		db:      db,
		logger:  log.WithComponent("fact_repository"),
		metrics: metrics,
	}
}

// LoadFacts loads attributes, events, addresses and relationships of the
// given entities. Rows keep their insertion order within each entity.
func (r *FactRepoImpl) LoadFacts(ctx context.Context, entityIDs []string) (map[string]*models.EntityFacts, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("load_facts", time.Since(startTime)) }()

	result := make(map[string]*models.EntityFacts, len(entityIDs))
	for _, chunk := range utils.ChunkSlice(utils.RemoveDuplicates(entityIDs), loadChunkSize) {
		if len(chunk) == 0 {
			continue
		}
		if err := r.loadChunk(ctx, chunk, result); err != nil {
			r.logger.Error(ctx, "Failed to load entity facts", err, logger.Fields{"entities": len(chunk)})
			return nil, errors.ErrDatabaseOperation("load_facts", err)
		}
	}

	r.logger.Debug(ctx, "Entity facts loaded", logger.Fields{
		"requested":  len(entityIDs),
		"found":      len(result),
		"latency_ms": time.Since(startTime).Milliseconds(),
	})
	return result, nil
}

func (r *FactRepoImpl) loadChunk(ctx context.Context, ids []string, out map[string]*models.EntityFacts) error {
	db := r.db.WithContext(ctx)

	var entities []EntityRow
	if err := db.Where("entity_id IN ?", ids).Find(&entities).Error; err != nil {
		return err
	}
	for _, e := range entities {
		out[e.EntityID] = &models.EntityFacts{EntityID: e.EntityID}
	}
	if len(entities) == 0 {
		return nil
	}

	var attributes []AttributeRow
	if err := db.Where("entity_id IN ?", ids).Order("id").Find(&attributes).Error; err != nil {
		return err
	}
	for _, a := range attributes {
		if f, ok := out[a.EntityID]; ok {
			f.Attributes = append(f.Attributes, a.toDomain())
		}
	}

	var events []EventRow
	if err := db.Where("entity_id IN ?", ids).Order("id").Find(&events).Error; err != nil {
		return err
	}
	for _, e := range events {
		if f, ok := out[e.EntityID]; ok {
			f.Events = append(f.Events, e.toDomain())
		}
	}

	var addresses []AddressRow
	if err := db.Where("entity_id IN ?", ids).Order("id").Find(&addresses).Error; err != nil {
		return err
	}
	for _, a := range addresses {
		if f, ok := out[a.EntityID]; ok {
			f.Addresses = append(f.Addresses, a.toDomain())
		}
	}

	var relationships []RelationshipRow
	if err := db.Where("entity_id IN ?", ids).Order("id").Find(&relationships).Error; err != nil {
		return err
	}
	for _, rel := range relationships {
		if f, ok := out[rel.EntityID]; ok {
			f.Relationships = append(f.Relationships, rel.toDomain())
		}
	}
	return nil
}

// ListEntityIDs pages through entity ids in ascending order.
func (r *FactRepoImpl) ListEntityIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("list_entity_ids", time.Since(startTime)) }()

	if limit <= 0 {
		return nil, errors.ErrInvalidRequest("limit must be positive")
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&EntityRow{}).
		Where("entity_id > ?", afterID).
		Order("entity_id").
		Limit(limit).
		Pluck("entity_id", &ids).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to list entity ids", err)
		return nil, errors.ErrDatabaseOperation("list_entity_ids", err)
	}
	return ids, nil
}
