package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ScoreSnapshot struct {
	mock.Mock
}

func (m *ScoreSnapshot) GetScores(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	args := m.Called(ctx, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *ScoreSnapshot) PutScores(ctx context.Context, scores map[string]float64) error {
	args := m.Called(ctx, scores)
	return args.Error(0)
}
