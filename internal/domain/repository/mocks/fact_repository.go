package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/gridrisk/internal/domain/models"
)

type FactRepository struct {
	mock.Mock
}

func (m *FactRepository) LoadFacts(ctx context.Context, entityIDs []string) (map[string]*models.EntityFacts, error) {
	args := m.Called(ctx, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.EntityFacts), args.Error(1)
}

func (m *FactRepository) ListEntityIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
