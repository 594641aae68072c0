package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
)

type MockEntityScorer struct {
	mock.Mock
}

func (m *MockEntityScorer) Score(ctx context.Context, facts models.EntityFacts, asOf time.Time) (*models.EntityRiskProfile, error) {
	args := m.Called(ctx, facts, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntityRiskProfile), args.Error(1)
}

func (m *MockEntityScorer) Tables() *reference.Tables {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*reference.Tables)
}

type MockProfilePublisher struct {
	mock.Mock
}

func (m *MockProfilePublisher) Publish(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

func (m *MockProfilePublisher) Name() string {
	args := m.Called()
	return args.String(0)
}
