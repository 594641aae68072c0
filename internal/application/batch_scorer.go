package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const tracerName = "github.com/turtacn/gridrisk/internal/application"

// BatchResult holds the outcome of one scoring batch.
// BatchResult 保存一次批量评分的结果。
type BatchResult struct {
	BatchID string
	AsOf    time.Time
	// Results keeps the input order. Entities that never started because the
	// context ended are absent.
	// Results 保持输入顺序；因上下文结束而未开始的实体不在其中。
	Results  []models.ScoreResult
	Complete bool
	Duration time.Duration
}

// Scored counts the entities that produced a profile.
func (r *BatchResult) Scored() int {
	n := 0
	for _, res := range r.Results {
		if !res.Unavailable() {
			n++
		}
	}
	return n
}

// Unavailable counts the entities that failed.
func (r *BatchResult) Unavailable() int {
	return len(r.Results) - r.Scored()
}

// Profiles returns the scored profiles in input order.
func (r *BatchResult) Profiles() []*models.EntityRiskProfile {
	out := make([]*models.EntityRiskProfile, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Profile != nil {
			out = append(out, res.Profile)
		}
	}
	return out
}

// BatchScorer scores many entities concurrently on a bounded worker pool.
// Entities are independent: one failure never aborts the others.
// BatchScorer 使用有界工作池并发地为多个实体评分，单个实体失败不会中断其他实体。
type BatchScorer struct {
	tables    service.TablesProvider
	opts      service.EngineOptions
	workers   int
	newScorer func(*reference.Tables) service.EntityScorer
	logger    logger.Logger
	metrics   service.Metrics
}

// NewBatchScorer creates a BatchScorer. workers below 1 is treated as 1.
// NewBatchScorer 创建批量评分器。
func NewBatchScorer(tables service.TablesProvider, opts service.EngineOptions, workers int, log logger.Logger, metrics service.Metrics) *BatchScorer {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	b := &BatchScorer{
		tables:  tables,
		opts:    opts,
		workers: workers,
		logger:  log.WithComponent("batch_scorer"),
		metrics: metrics,
	}
	b.newScorer = func(t *reference.Tables) service.EntityScorer {
		return service.NewScoringEngine(t, b.opts, log, b.metrics)
	}
	return b
}

// Score scores every entity as of asOf. All entities of one batch see the same
// table snapshot. A cancelled or expired ctx stops new entities from starting;
// entities already started finish and are returned.
// Score 以 asOf 为基准为所有实体评分。同一批次使用同一份参考表快照。
func (b *BatchScorer) Score(ctx context.Context, entities []models.EntityFacts, asOf time.Time) *BatchResult {
	start := time.Now()
	batchID := uuid.NewString()
	ctx = context.WithValue(ctx, constants.ContextKeyBatchID, batchID)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "BatchScorer.Score")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", len(entities)),
	)

	scorer := b.newScorer(b.tables.Current())
	slots := make([]*models.ScoreResult, len(entities))

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i := range entities {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := b.scoreOne(ctx, scorer, entities[i], asOf)
			slots[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{
		BatchID:  batchID,
		AsOf:     asOf,
		Results:  make([]models.ScoreResult, 0, len(entities)),
		Complete: true,
		Duration: time.Since(start),
	}
	for _, s := range slots {
		if s == nil {
			result.Complete = false
			continue
		}
		result.Results = append(result.Results, *s)
	}

	failed := result.Unavailable()
	b.metrics.RecordBatch(len(entities), failed, result.Duration)
	span.SetAttributes(
		attribute.Int("batch.scored", result.Scored()),
		attribute.Int("batch.failed", failed),
		attribute.Bool("batch.complete", result.Complete),
	)

	fields := logger.Fields{
		"requested":   len(entities),
		"scored":      result.Scored(),
		"unavailable": failed,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if !result.Complete {
		span.SetStatus(codes.Error, "batch interrupted")
		b.logger.Warn(ctx, "scoring batch interrupted before all entities started", logger.Merge(fields, logger.Fields{
			"not_started": len(entities) - len(result.Results),
			"cause":       fmt.Sprint(ctx.Err()),
		}))
	} else {
		b.logger.Info(ctx, "scoring batch finished", fields)
	}
	return result
}

// scoreOne isolates one entity; a panic becomes a scoring_error for that entity only.
func (b *BatchScorer) scoreOne(ctx context.Context, scorer service.EntityScorer, facts models.EntityFacts, asOf time.Time) (res models.ScoreResult) {
	start := time.Now()
	res.EntityID = facts.EntityID

	defer func() {
		if r := recover(); r != nil {
			res.Profile = nil
			res.Err = errors.ErrScoring(facts.EntityID, fmt.Sprintf("internal failure: %v", r))
		}
		if res.Err != nil {
			b.metrics.RecordEntityScored("", false, time.Since(start))
			b.logger.Warn(ctx, "entity score unavailable", logger.Fields{
				"entity_id": facts.EntityID,
				"reason":    res.Reason(),
			})
			return
		}
		b.metrics.RecordEntityScored(string(res.Profile.SeverityTier), true, time.Since(start))
	}()

	profile, err := scorer.Score(ctx, facts, asOf)
	if err != nil {
		if !errors.HasCode(err, constants.ErrCodeScoringError) {
			err = errors.ErrScoring(facts.EntityID, err.Error()).WithCause(err)
		}
		res.Err = err
		return res
	}
	if profile == nil {
		res.Err = errors.ErrScoring(facts.EntityID, "scorer returned no profile")
		return res
	}
	res.Profile = profile
	return res
}
