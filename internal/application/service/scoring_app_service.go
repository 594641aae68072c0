// Package service contains the application services that orchestrate fact
// loading, batch scoring and profile distribution.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/gridrisk/internal/application"
	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
	"github.com/turtacn/gridrisk/pkg/utils"
)

const (
	tracerName = "github.com/turtacn/gridrisk/internal/application/service"

	// sideEffectTimeout bounds persistence and publication after a batch,
	// which run even when the batch deadline has passed.
	sideEffectTimeout = 10 * time.Second
)

// ScoringAppService defines the scoring use cases exposed over HTTP, the CLI and Kafka.
// ScoringAppService 定义通过 HTTP、命令行和 Kafka 暴露的评分用例。
type ScoringAppService interface {
	// ScoreFacts scores caller-supplied facts.
	// ScoreFacts 为调用方提供的事实评分。
	ScoreFacts(ctx context.Context, req *dto.ScoreFactsRequest) (*dto.BatchScoreResponse, error)

	// ScoreEntities loads facts from the warehouse and scores them.
	// ScoreEntities 从数仓加载事实并评分。
	ScoreEntities(ctx context.Context, req *dto.ScoreEntitiesRequest) (*dto.BatchScoreResponse, error)

	// RescoreEntities rescores ids in chunks of the maximum batch size.
	// RescoreEntities 按最大批次大小分块重新评分。
	RescoreEntities(ctx context.Context, entityIDs []string) error

	// GetProfile returns the latest persisted profile of an entity.
	// GetProfile 获取实体最近一次持久化的风险画像。
	GetProfile(ctx context.Context, entityID string) (*dto.ProfileDTO, error)

	// TierSummary counts persisted profiles per severity tier.
	// TierSummary 统计各严重等级的画像数量。
	TierSummary(ctx context.Context) (*dto.TierSummaryResponse, error)
}

// scoringAppServiceImpl is the concrete implementation of ScoringAppService.
// scoringAppServiceImpl 评分应用服务实现。
type scoringAppServiceImpl struct {
	scorer     *application.BatchScorer
	resolver   *application.RelatedScoreResolver
	facts      repository.FactRepository
	profiles   repository.RiskProfileRepository
	snapshot   repository.ScoreSnapshot
	publishers []service.ProfilePublisher
	cfg        config.ScoringConfig
	logger     logger.Logger
	metrics    service.Metrics
	now        func() time.Time
}

// NewScoringAppService creates a new instance of ScoringAppService.
// snapshot and publishers may be nil.
// NewScoringAppService 创建评分应用服务实例。
func NewScoringAppService(
	scorer *application.BatchScorer,
	resolver *application.RelatedScoreResolver,
	facts repository.FactRepository,
	profiles repository.RiskProfileRepository,
	snapshot repository.ScoreSnapshot,
	publishers []service.ProfilePublisher,
	cfg config.ScoringConfig,
	log logger.Logger,
	metrics service.Metrics,
) ScoringAppService {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &scoringAppServiceImpl{
		scorer:     scorer,
		resolver:   resolver,
		facts:      facts,
		profiles:   profiles,
		snapshot:   snapshot,
		publishers: publishers,
		cfg:        cfg,
		logger:     log.WithComponent("scoring_app_service"),
		metrics:    metrics,
		now:        time.Now,
	}
}

// ScoreFacts validates, resolves related scores and scores the supplied facts.
// ScoreFacts 校验请求、解析关联评分并为提供的事实评分。
func (s *scoringAppServiceImpl) ScoreFacts(ctx context.Context, req *dto.ScoreFactsRequest) (*dto.BatchScoreResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkBatchSize(len(req.Entities)); err != nil {
		return nil, err
	}
	asOf, err := dto.ParseAsOf(req.AsOf, s.now())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Entities))
	facts := make([]models.EntityFacts, 0, len(req.Entities))
	for _, e := range req.Entities {
		if _, dup := seen[e.EntityID]; dup {
			return nil, errors.ErrInvalidRequest(fmt.Sprintf("entity %s appears more than once", e.EntityID)).
				WithMetadata("entity_id", e.EntityID)
		}
		seen[e.EntityID] = struct{}{}
		facts = append(facts, e.ToModel())
	}

	ctx, cancel := s.withBatchDeadline(ctx)
	defer cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ScoringAppService.ScoreFacts")
	defer span.End()

	batch := s.scorer.Score(ctx, s.resolver.Resolve(ctx, facts), asOf)
	span.SetAttributes(attribute.String("batch.id", batch.BatchID))

	if req.Persist {
		if err := s.persist(ctx, batch.Profiles()); err != nil {
			return nil, err
		}
	}
	return buildResponse(batch, len(facts), batch.Results), nil
}

// ScoreEntities loads warehouse facts, scores them and distributes the profiles.
// Ids unknown to the warehouse are reported as unavailable.
// ScoreEntities 加载数仓事实、评分并分发风险画像；数仓中不存在的实体标记为不可用。
func (s *scoringAppServiceImpl) ScoreEntities(ctx context.Context, req *dto.ScoreEntitiesRequest) (*dto.BatchScoreResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	ids := utils.RemoveDuplicates(req.EntityIDs)
	if err := s.checkBatchSize(len(ids)); err != nil {
		return nil, err
	}
	asOf, err := dto.ParseAsOf(req.AsOf, s.now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withBatchDeadline(ctx)
	defer cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ScoringAppService.ScoreEntities")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.requested", len(ids)))

	loaded, err := s.facts.LoadFacts(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	facts := make([]models.EntityFacts, 0, len(loaded))
	for _, id := range ids {
		if f, ok := loaded[id]; ok && f != nil {
			facts = append(facts, *f)
		}
	}

	batch := s.scorer.Score(ctx, s.resolver.Resolve(ctx, facts), asOf)
	span.SetAttributes(attribute.String("batch.id", batch.BatchID))

	if s.cfg.PersistProfiles {
		if err := s.persist(ctx, batch.Profiles()); err != nil {
			return nil, err
		}
	}

	byID := make(map[string]models.ScoreResult, len(batch.Results))
	for _, r := range batch.Results {
		byID[r.EntityID] = r
	}
	results := make([]models.ScoreResult, 0, len(ids))
	for _, id := range ids {
		if _, found := loaded[id]; !found {
			results = append(results, models.ScoreResult{EntityID: id, Err: errors.ErrEntityNotFound(id)})
			continue
		}
		if r, ok := byID[id]; ok {
			results = append(results, r)
		}
	}
	return buildResponse(batch, len(ids), results), nil
}

// RescoreEntities implements the handler behind the rescore topic.
func (s *scoringAppServiceImpl) RescoreEntities(ctx context.Context, entityIDs []string) error {
	size := s.cfg.MaxBatchSize
	for _, chunk := range utils.ChunkSlice(utils.RemoveDuplicates(entityIDs), size) {
		if len(chunk) == 0 {
			continue
		}
		resp, err := s.ScoreEntities(ctx, &dto.ScoreEntitiesRequest{EntityIDs: chunk})
		if err != nil {
			return err
		}
		s.logger.Info(ctx, "rescore chunk finished", logger.Fields{
			"batch_id":    resp.BatchID,
			"scored":      resp.Scored,
			"unavailable": resp.Unavailable,
		})
		if resp.Incomplete {
			return errors.ErrTemporarilyUnavailable("rescore batch did not finish before its deadline").
				WithMetadata("batch_id", resp.BatchID)
		}
	}
	return nil
}

// GetProfile 获取实体画像
func (s *scoringAppServiceImpl) GetProfile(ctx context.Context, entityID string) (*dto.ProfileDTO, error) {
	if !utils.ValidateNotEmpty(entityID) {
		return nil, errors.ErrInvalidRequest("entity id is required")
	}
	profile, err := s.profiles.GetProfile(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.ErrEntityNotFound(entityID)
	}
	out := dto.FromProfile(profile)
	return &out, nil
}

// TierSummary 统计等级分布
func (s *scoringAppServiceImpl) TierSummary(ctx context.Context) (*dto.TierSummaryResponse, error) {
	counts, err := s.profiles.CountByTier(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.TierSummaryResponse{Tiers: make(map[string]int64, len(counts))}
	for tier, n := range counts {
		resp.Tiers[string(tier)] = n
		resp.Total += n
	}
	return resp, nil
}

func (s *scoringAppServiceImpl) checkBatchSize(n int) error {
	if s.cfg.MaxBatchSize > 0 && n > s.cfg.MaxBatchSize {
		return errors.ErrInvalidRequest(fmt.Sprintf("batch of %d entities exceeds the limit of %d", n, s.cfg.MaxBatchSize)).
			WithMetadata("limit", s.cfg.MaxBatchSize)
	}
	return nil
}

// withBatchDeadline applies the configured batch timeout unless the caller set a deadline.
func (s *scoringAppServiceImpl) withBatchDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.cfg.BatchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.BatchTimeoutDuration())
}

// persist stores profiles, refreshes the snapshot and publishes. Only the
// profile store is authoritative; snapshot and publisher failures are logged.
func (s *scoringAppServiceImpl) persist(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.profiles.UpsertProfiles(ctx, profiles); err != nil {
		s.logger.Error(ctx, "failed to persist risk profiles", err, logger.Fields{"profiles": len(profiles)})
		return err
	}

	if s.snapshot != nil {
		scores := make(map[string]float64, len(profiles))
		for _, p := range profiles {
			scores[p.EntityID] = p.FinalScore
		}
		if err := s.snapshot.PutScores(ctx, scores); err != nil {
			s.logger.Warn(ctx, "failed to refresh score snapshot", logger.Fields{"error": err.Error()})
		}
	}

	for _, pub := range s.publishers {
		err := pub.Publish(ctx, profiles)
		s.metrics.RecordPublish(pub.Name(), err == nil)
		if err != nil {
			s.logger.Warn(ctx, "failed to publish risk profiles", logger.Fields{
				"sink":     pub.Name(),
				"profiles": len(profiles),
				"error":    err.Error(),
			})
		}
	}
	return nil
}

func buildResponse(batch *application.BatchResult, requested int, results []models.ScoreResult) *dto.BatchScoreResponse {
	resp := &dto.BatchScoreResponse{
		BatchID:    batch.BatchID,
		AsOf:       batch.AsOf.Format(time.RFC3339),
		Requested:  requested,
		Incomplete: !batch.Complete,
		DurationMS: batch.Duration.Milliseconds(),
		Results:    make([]dto.ProfileDTO, 0, len(results)),
	}
	for _, r := range results {
		out := dto.FromResult(r)
		if out.Status == dto.StatusScored {
			resp.Scored++
		} else {
			resp.Unavailable++
		}
		resp.Results = append(resp.Results, out)
	}
	return resp
}

//Personal.AI order the ending
