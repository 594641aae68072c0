package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
	"github.com/turtacn/gridrisk/pkg/utils"
)

const upsertBatchSize = 200

type riskRepository struct {
	db      *gorm.DB
	log     logger.Logger
	metrics service.Metrics
}

func NewRiskRepository(db *gorm.DB, log logger.Logger, metrics service.Metrics) repository.RiskProfileRepository {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &riskRepository{
		db:      db,
		log:     log.WithComponent("risk_repository"),
		metrics: metrics,
	}
}

func (r *riskRepository) GetProfile(ctx context.Context, entityID string) (*models.EntityRiskProfile, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("get_profile", time.Since(startTime)) }()

	var row RiskProfileRow
	if err := r.db.WithContext(ctx).Where("entity_id = ?", entityID).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // callers fall back to neutral defaults
		}
		r.log.Error(ctx, "Failed to load risk profile", err, logger.Fields{"entity_id": entityID})
		return nil, errors.ErrDatabaseOperation("get_profile", err)
	}
	return row.toDomain(), nil
}

func (r *riskRepository) GetFinalScores(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("get_final_scores", time.Since(startTime)) }()

	scores := make(map[string]float64, len(entityIDs))
	for _, chunk := range utils.ChunkSlice(utils.RemoveDuplicates(entityIDs), loadChunkSize) {
		if len(chunk) == 0 {
			continue
		}
		var rows []RiskProfileRow
		err := r.db.WithContext(ctx).
			Select("entity_id", "final_score").
			Where("entity_id IN ?", chunk).
			Find(&rows).Error
		if err != nil {
			r.log.Error(ctx, "Failed to load final scores", err)
			return nil, errors.ErrDatabaseOperation("get_final_scores", err)
		}
		for _, row := range rows {
			scores[row.EntityID] = row.FinalScore
		}
	}
	return scores, nil
}

func (r *riskRepository) UpsertProfiles(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("upsert_profiles", time.Since(startTime)) }()

	rows := make([]RiskProfileRow, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		rows = append(rows, profileRowFromDomain(p))
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		r.log.Error(ctx, "Failed to upsert risk profiles", err, logger.Fields{"profiles": len(rows)})
		return errors.ErrDatabaseOperation("upsert_profiles", err)
	}
	return nil
}

func (r *riskRepository) CountByTier(ctx context.Context) (map[constants.SeverityTier]int64, error) {
	startTime := time.Now()
	defer func() { r.metrics.RecordDBQuery("count_by_tier", time.Since(startTime)) }()

	var rows []struct {
		SeverityTier string
		Count        int64
	}
	err := r.db.WithContext(ctx).
		Model(&RiskProfileRow{}).
		Select("severity_tier, COUNT(*) AS count").
		Group("severity_tier").
		Scan(&rows).Error
	if err != nil {
		r.log.Error(ctx, "Failed to count profiles by tier", err)
		return nil, errors.ErrDatabaseOperation("count_by_tier", err)
	}

	counts := make(map[constants.SeverityTier]int64, len(rows))
	for _, row := range rows {
		counts[constants.SeverityTier(row.SeverityTier)] = row.Count
	}
	return counts, nil
}
