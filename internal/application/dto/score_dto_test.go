package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/utils"
)

func TestEntityFactsDTO_ToModel(t *testing.T) {
	score := 60.0
	in := EntityFactsDTO{
		EntityID:   "E-1",
		Attributes: []AttributeDTO{{CodeType: "PTY", Value: "HOS:L1", CreatedAt: "2020-01-01"}},
		Events: []EventDTO{
			{CategoryCode: "MLA", SubCategoryCode: "CVT", EventDate: "2024-01-01"},
			{CategoryCode: "FRD", EventDate: "garbage"},
		},
		Addresses:     []AddressDTO{{Country: "GB"}},
		Relationships: []RelationshipDTO{{RelatedEntityID: "E-2", Type: "OWNER", RelatedRiskScore: &score}},
	}

	facts := in.ToModel()
	assert.Equal(t, "E-1", facts.EntityID)
	require.Len(t, facts.Attributes, 1)
	assert.Equal(t, constants.CodeTypePEPRole, facts.Attributes[0].CodeType)
	assert.Equal(t, 2020, facts.Attributes[0].CreatedAt.Year())

	require.Len(t, facts.Events, 2)
	require.NotNil(t, facts.Events[0].EventDate)
	assert.Nil(t, facts.Events[1].EventDate)

	require.Len(t, facts.Relationships, 1)
	rel := facts.Relationships[0]
	assert.Equal(t, constants.DirectionTo, rel.Direction, "direction defaults to TO")
	assert.Equal(t, "E-1", rel.SourceEntityID)
	assert.Equal(t, 60.0, *rel.RelatedRiskScore)
}

func TestValidation(t *testing.T) {
	valid := ScoreFactsRequest{Entities: []EntityFactsDTO{{EntityID: "E-1"}}}
	assert.Nil(t, utils.ValidateStruct(valid))

	err := utils.ValidateStruct(ScoreFactsRequest{})
	require.NotNil(t, err)
	assert.Equal(t, constants.ErrCodeInvalidRequest, err.Code())

	bad := ScoreFactsRequest{Entities: []EntityFactsDTO{{
		EntityID:      "E-1",
		Relationships: []RelationshipDTO{{RelatedEntityID: "E-2", Direction: "SIDEWAYS"}},
	}}}
	assert.NotNil(t, utils.ValidateStruct(bad))

	assert.NotNil(t, utils.ValidateStruct(ScoreEntitiesRequest{EntityIDs: []string{"has space"}}))
}

func TestParseAsOf(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	got, err := ParseAsOf("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseAsOf("2023-12-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseAsOf("yesterday", now)
	assert.True(t, errors.HasCode(err, constants.ErrCodeInvalidRequest))
}

func TestFromResult(t *testing.T) {
	profile := &models.EntityRiskProfile{
		EntityID:     "E-1",
		PEP:          models.PepClassification{IsPEP: true, Roles: []string{"HOS"}, MaxPriority: 90, RiskMultiplier: 1.3},
		EventScore:   179.01,
		FinalScore:   102.20555,
		SeverityTier: constants.TierCritical,
		ScoredAt:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	out := FromResult(models.ScoreResult{EntityID: "E-1", Profile: profile})
	assert.Equal(t, StatusScored, out.Status)
	assert.Equal(t, 102.2, *out.FinalScore)
	assert.Equal(t, 179.01, *out.EventScore)
	assert.Equal(t, "Critical", out.SeverityTier)

	failed := FromResult(models.ScoreResult{
		EntityID: "E-2",
		Err:      errors.ErrScoring("E-2", "relationship to E-9 has no related risk score"),
	})
	assert.Equal(t, StatusUnavailable, failed.Status)
	assert.Equal(t, "relationship to E-9 has no related risk score", failed.Reason)
	assert.Nil(t, failed.FinalScore)

	// Unavailable must never serialize as a zero score.
	raw, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "final_score")

	zero := FromProfile(&models.EntityRiskProfile{EntityID: "E-3", SeverityTier: constants.TierProbative})
	raw, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"final_score":0`)
}

func TestFromProfile_FinalScoreStaysBelowMissedCutoff(t *testing.T) {
	out := FromProfile(&models.EntityRiskProfile{
		EntityID:     "E-EDGE",
		FinalScore:   79.996,
		EventScore:   79.996,
		SeverityTier: constants.TierValuable,
	})
	assert.Equal(t, 79.99, *out.FinalScore)
	assert.Equal(t, "Valuable", out.SeverityTier)
	assert.Equal(t, 80.0, *out.EventScore)
}

func TestTruncate2(t *testing.T) {
	assert.Equal(t, 9.55, Truncate2(9.555))
	assert.Equal(t, 79.99, Truncate2(79.999))
	assert.Equal(t, 80.0, Truncate2(80))
	assert.Equal(t, 120.0, Truncate2(120))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 9.56, Round2(9.555))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 120.0, Round2(120))
}
