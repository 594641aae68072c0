package repository

import (
	"context"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
)

//go:generate mockery --name RiskProfileRepository --output ../repository/mocks --filename risk_repository.go
type RiskProfileRepository interface {
	// GetProfile retrieves the latest persisted profile of an entity.
	// If the profile is not found, it returns (nil, nil) so callers can
	// fall back to neutral defaults.
	GetProfile(ctx context.Context, entityID string) (*models.EntityRiskProfile, error)

	// GetFinalScores returns persisted final scores for the ids that have one.
	GetFinalScores(ctx context.Context, entityIDs []string) (map[string]float64, error)

	// UpsertProfiles creates or replaces the profiles of the given entities.
	UpsertProfiles(ctx context.Context, profiles []*models.EntityRiskProfile) error

	// CountByTier returns the number of persisted profiles per severity tier.
	CountByTier(ctx context.Context) (map[constants.SeverityTier]int64, error)
}

//go:generate mockery --name ScoreSnapshot --output ../repository/mocks --filename score_snapshot.go
// ScoreSnapshot is a read-mostly store of previously computed final scores,
// used to resolve related-entity scores without recursive scoring.
type ScoreSnapshot interface {
	// GetScores returns the known scores; ids without a score are absent.
	GetScores(ctx context.Context, entityIDs []string) (map[string]float64, error)

	// PutScores records freshly computed scores.
	PutScores(ctx context.Context, scores map[string]float64) error
}
