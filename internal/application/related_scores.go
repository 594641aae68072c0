package application

import (
	"context"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/repository"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// RelatedScoreResolver fills in RelatedRiskScore on relationship facts from the
// snapshot of previously persisted scores. Entities are never scored
// recursively; an entity without a snapshot score gets the tables'
// unknown_related_score.
type RelatedScoreResolver struct {
	snapshot repository.ScoreSnapshot
	tables   service.TablesProvider
	logger   logger.Logger
}

func NewRelatedScoreResolver(snapshot repository.ScoreSnapshot, tables service.TablesProvider, log logger.Logger) *RelatedScoreResolver {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &RelatedScoreResolver{
		snapshot: snapshot,
		tables:   tables,
		logger:   log.WithComponent("related_score_resolver"),
	}
}

// Resolve returns copies of facts whose relationships all carry a related score.
// Caller-supplied scores are kept. A snapshot failure degrades to the default score.
func (r *RelatedScoreResolver) Resolve(ctx context.Context, facts []models.EntityFacts) []models.EntityFacts {
	var missing []string
	seen := make(map[string]struct{})
	for _, f := range facts {
		for _, id := range f.RelatedEntityIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			missing = append(missing, id)
		}
	}

	known := map[string]float64{}
	if len(missing) > 0 && r.snapshot != nil {
		scores, err := r.snapshot.GetScores(ctx, missing)
		if err != nil {
			r.logger.Warn(ctx, "score snapshot unavailable, using default related score", logger.Fields{
				"related_entities": len(missing),
				"error":            err.Error(),
			})
		} else {
			known = scores
		}
	}

	fallback := r.tables.Current().UnknownRelatedScore
	out := make([]models.EntityFacts, len(facts))
	for i, f := range facts {
		out[i] = f
		if len(f.Relationships) == 0 {
			continue
		}
		rels := make([]models.RelationshipFact, len(f.Relationships))
		copy(rels, f.Relationships)
		for j := range rels {
			if rels[j].RelatedRiskScore != nil {
				continue
			}
			score, ok := known[rels[j].RelatedEntityID]
			if !ok {
				score = fallback
			}
			rels[j].RelatedRiskScore = &score
		}
		out[i].Relationships = rels
	}
	return out
}
