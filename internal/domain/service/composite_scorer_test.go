package service_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
)

// eventOnlyTables weights the event score 1:1 so final == event score.
func eventOnlyTables() *reference.Tables {
	t := *reference.Defaults()
	t.Weights = reference.CompositeWeights{Event: 1}
	return t.Normalize()
}

func TestCompositeScorer_TierBoundaries(t *testing.T) {
	scorer := service.NewCompositeScorer(eventOnlyTables())

	tests := []struct {
		score float64
		tier  constants.SeverityTier
	}{
		{80.0, constants.TierCritical},
		{79.99, constants.TierValuable},
		{60.0, constants.TierValuable},
		{40.0, constants.TierInvestigative},
		{39.99, constants.TierProbative},
	}
	for _, tt := range tests {
		got, err := scorer.Score(service.CompositeInputs{
			EventScore:         tt.score,
			WorstGeoMultiplier: 1,
			PEP:                models.NotPEP(),
		})
		require.NoError(t, err)
		assert.InDelta(t, tt.score, got.FinalScore, 1e-12)
		assert.Equal(t, tt.tier, got.SeverityTier, "score=%v", tt.score)
	}
}

func TestCompositeScorer_CapAndMultipliers(t *testing.T) {
	scorer := service.NewCompositeScorer(eventOnlyTables())
	pep := models.PepClassification{IsPEP: true, MaxPriority: 100, RiskMultiplier: 1.3}

	got, err := scorer.Score(service.CompositeInputs{EventScore: 100, WorstGeoMultiplier: 2.5, PEP: pep})
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.FinalScore)
	assert.Equal(t, constants.FloorNone, got.AppliedFloor)
}

func TestCompositeScorer_PEPComponent(t *testing.T) {
	scorer := service.NewCompositeScorer(reference.Defaults())

	assert.Equal(t, 0.0, scorer.PEPComponent(models.NotPEP()))
	assert.InDelta(t, 36.0, scorer.PEPComponent(models.PepClassification{IsPEP: true, MaxPriority: 90}), 1e-12)
}

func TestCompositeScorer_Floors(t *testing.T) {
	scorer := service.NewCompositeScorer(reference.Defaults())
	old := date(2010, 1, 1)

	tests := []struct {
		name   string
		events []models.EventFact
		floor  float64
		rule   constants.FloorRule
		tier   constants.SeverityTier
	}{
		{"terrorism", []models.EventFact{dated("TER", "ACQ", old)}, 90, constants.FloorTerrorism, constants.TierCritical},
		{"watchlist", []models.EventFact{dated("WLT", "ALL", old)}, 80, constants.FloorSanctions, constants.TierCritical},
		{"conviction", []models.EventFact{dated("FOF", "CVT", old)}, 40, constants.FloorConviction, constants.TierInvestigative},
		{"sanctioned sub-category", []models.EventFact{dated("MLA", "SAN", old)}, 80, constants.FloorSanctions, constants.TierCritical},
		{"sanctions beats conviction", []models.EventFact{dated("FOF", "CVT", old), dated("MLA", "san", old)}, 80, constants.FloorSanctions, constants.TierCritical},
		{"highest floor wins", []models.EventFact{dated("FOF", "CVT", old), dated("TER", "", old)}, 90, constants.FloorTerrorism, constants.TierCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(service.CompositeInputs{
				EventScore:         1,
				GeographicScore:    25,
				WorstGeoMultiplier: 1,
				PEP:                models.NotPEP(),
				Events:             tt.events,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.floor, got.FinalScore)
			assert.Equal(t, tt.rule, got.AppliedFloor)
			assert.Equal(t, tt.tier, got.SeverityTier)
		})
	}
}

func TestCompositeScorer_FloorDoesNotLowerHigherScore(t *testing.T) {
	scorer := service.NewCompositeScorer(eventOnlyTables())

	got, err := scorer.Score(service.CompositeInputs{
		EventScore:         95,
		WorstGeoMultiplier: 1,
		PEP:                models.NotPEP(),
		Events:             []models.EventFact{{CategoryCode: "TER"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, got.FinalScore)
	assert.Equal(t, constants.FloorNone, got.AppliedFloor)
}

func TestCompositeScorer_AlwaysWithinBounds(t *testing.T) {
	scorer := service.NewCompositeScorer(reference.Defaults())
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		got, err := scorer.Score(service.CompositeInputs{
			EventScore:         rng.Float64() * 400,
			RelationshipScore:  rng.Float64() * 50,
			GeographicScore:    rng.Float64() * 75,
			WorstGeoMultiplier: rng.Float64() * 2.5,
			PEP: models.PepClassification{
				IsPEP:          rng.Intn(2) == 1,
				MaxPriority:    rng.Intn(101),
				RiskMultiplier: 1 + rng.Float64()*0.3,
			},
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.FinalScore, 0.0)
		assert.LessOrEqual(t, got.FinalScore, 120.0)
	}
}
