package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/gridrisk/internal/application/dto"
)

// ScoringAppService is a testify mock of service.ScoringAppService.
type ScoringAppService struct {
	mock.Mock
}

func (m *ScoringAppService) ScoreFacts(ctx context.Context, req *dto.ScoreFactsRequest) (*dto.BatchScoreResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchScoreResponse), args.Error(1)
}

func (m *ScoringAppService) ScoreEntities(ctx context.Context, req *dto.ScoreEntitiesRequest) (*dto.BatchScoreResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchScoreResponse), args.Error(1)
}

func (m *ScoringAppService) RescoreEntities(ctx context.Context, entityIDs []string) error {
	args := m.Called(ctx, entityIDs)
	return args.Error(0)
}

func (m *ScoringAppService) GetProfile(ctx context.Context, entityID string) (*dto.ProfileDTO, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileDTO), args.Error(1)
}

func (m *ScoringAppService) TierSummary(ctx context.Context) (*dto.TierSummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TierSummaryResponse), args.Error(1)
}
