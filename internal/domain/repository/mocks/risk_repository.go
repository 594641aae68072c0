package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
)

type RiskProfileRepository struct {
	mock.Mock
}

func (m *RiskProfileRepository) GetProfile(ctx context.Context, entityID string) (*models.EntityRiskProfile, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntityRiskProfile), args.Error(1)
}

func (m *RiskProfileRepository) GetFinalScores(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	args := m.Called(ctx, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *RiskProfileRepository) UpsertProfiles(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

func (m *RiskProfileRepository) CountByTier(ctx context.Context) (map[constants.SeverityTier]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[constants.SeverityTier]int64), args.Error(1)
}
