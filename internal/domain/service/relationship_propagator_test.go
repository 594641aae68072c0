package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/utils"
)

func TestRelationshipPropagator_Empty(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())

	score, err := prop.Score(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestRelationshipPropagator_SecondDegreeBidirectional(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())

	score, err := prop.Score([]models.RelationshipFact{{
		SourceEntityID:   "E1",
		RelatedEntityID:  "E2",
		Type:             "personal",
		Direction:        constants.DirectionBidirectional,
		Degree:           2,
		RelatedRiskScore: utils.Float64Ptr(10),
	}})
	require.NoError(t, err)
	// 10 * 1.1 * 0.5 * 1.2 + ln(2)*5
	assert.InDelta(t, 6.6+math.Log(2)*5, score, 1e-9)
}

func TestRelationshipPropagator_Capped(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())

	score, err := prop.Score([]models.RelationshipFact{{
		RelatedEntityID:  "E2",
		Type:             "ownership",
		Degree:           1,
		RelatedRiskScore: utils.Float64Ptr(100),
	}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)
}

func TestRelationshipPropagator_ZeroDegreeTreatedAsDirect(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())
	rel := models.RelationshipFact{RelatedEntityID: "E2", Type: "other", RelatedRiskScore: utils.Float64Ptr(10)}

	c, err := prop.Contribution(rel)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c)
}

func TestRelationshipPropagator_MissingRelatedScore(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())

	_, err := prop.Score([]models.RelationshipFact{
		{SourceEntityID: "E1", RelatedEntityID: "E2", RelatedRiskScore: utils.Float64Ptr(10)},
		{SourceEntityID: "E1", RelatedEntityID: "E3"},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, constants.ErrCodeScoringError))
	assert.Contains(t, err.Error(), "E3")
}

func TestRelationshipPropagator_OrderIndependent(t *testing.T) {
	prop := service.NewRelationshipPropagator(reference.Defaults())
	rels := []models.RelationshipFact{
		{RelatedEntityID: "A", Type: "business", Degree: 1, RelatedRiskScore: utils.Float64Ptr(3.3)},
		{RelatedEntityID: "B", Type: "legal", Degree: 3, RelatedRiskScore: utils.Float64Ptr(7.1)},
		{RelatedEntityID: "C", Type: "personal", Degree: 2, Direction: constants.DirectionBidirectional, RelatedRiskScore: utils.Float64Ptr(1.7)},
		{RelatedEntityID: "D", Type: "financial", Degree: 1, RelatedRiskScore: utils.Float64Ptr(0.9)},
	}
	want, err := prop.Score(rels)
	require.NoError(t, err)

	for _, perm := range permutations(len(rels)) {
		shuffled := make([]models.RelationshipFact, len(rels))
		for i, idx := range perm {
			shuffled[i] = rels[idx]
		}
		got, err := prop.Score(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
