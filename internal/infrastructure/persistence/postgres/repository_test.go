package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedWarehouse(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create([]EntityRow{
		{EntityID: "E-1", Name: "Alpha", EntityType: "PERSON"},
		{EntityID: "E-2", Name: "Beta", EntityType: "PERSON"},
		{EntityID: "E-3", Name: "Gamma", EntityType: "ORG"},
	}).Error)
	require.NoError(t, db.Create([]AttributeRow{
		{EntityID: "E-1", CodeType: "PTY", Value: "HOS:L1"},
		{EntityID: "E-1", CodeType: "PRT", Value: "A:01/15/2020"},
		{EntityID: "E-2", CodeType: "NAT", Value: "GB"},
	}).Error)
	require.NoError(t, db.Create([]EventRow{
		{EntityID: "E-1", CategoryCode: "MLA", SubCategoryCode: "CVT", EventDate: "2023-03-01"},
		{EntityID: "E-1", CategoryCode: "FRD", EventDate: "not a date"},
	}).Error)
	require.NoError(t, db.Create([]AddressRow{
		{EntityID: "E-1", Country: "RU"},
		{EntityID: "E-2", Country: "United Kingdom"},
	}).Error)
	require.NoError(t, db.Create([]RelationshipRow{
		{EntityID: "E-1", RelatedEntityID: "E-2", RelationshipType: "ASSOCIATE", Direction: "TO", Degree: 1},
	}).Error)
}

func TestFactRepository_LoadFacts(t *testing.T) {
	db := setupTestDB(t)
	seedWarehouse(t, db)
	repo := NewFactRepository(db, logger.NewNoopLogger(), nil)

	facts, err := repo.LoadFacts(context.Background(), []string{"E-1", "E-2", "E-1", "missing"})
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.NotContains(t, facts, "missing")

	e1 := facts["E-1"]
	require.Len(t, e1.Attributes, 2)
	assert.Equal(t, constants.CodeTypePEPRole, e1.Attributes[0].CodeType)
	assert.Equal(t, "HOS:L1", e1.Attributes[0].Value)
	assert.Equal(t, constants.CodeTypePEPRating, e1.Attributes[1].CodeType)

	require.Len(t, e1.Events, 2)
	require.NotNil(t, e1.Events[0].EventDate)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), *e1.Events[0].EventDate)
	assert.Nil(t, e1.Events[1].EventDate, "malformed warehouse dates load as unknown")
	assert.False(t, e1.Events[1].HasSubCategory())

	require.Len(t, e1.Relationships, 1)
	rel := e1.Relationships[0]
	assert.Equal(t, "E-1", rel.SourceEntityID)
	assert.Equal(t, "E-2", rel.RelatedEntityID)
	assert.Equal(t, constants.DirectionTo, rel.Direction)
	assert.Nil(t, rel.RelatedRiskScore)

	e2 := facts["E-2"]
	assert.Empty(t, e2.Events)
	require.Len(t, e2.Addresses, 1)
	assert.Equal(t, "United Kingdom", e2.Addresses[0].Country)
}

func TestFactRepository_LoadFactsNormalizesDirection(t *testing.T) {
	db := setupTestDB(t)
	seedWarehouse(t, db)
	require.NoError(t, db.Create([]RelationshipRow{
		{EntityID: "E-3", RelatedEntityID: "R-1", RelationshipType: "business", Direction: " bidirectional ", Degree: 1},
		{EntityID: "E-3", RelatedEntityID: "R-2", RelationshipType: "business", Direction: "Bi-Directional", Degree: 1},
		{EntityID: "E-3", RelatedEntityID: "R-3", RelationshipType: "business", Direction: "from", Degree: 1},
		{EntityID: "E-3", RelatedEntityID: "R-4", RelationshipType: "business", Direction: "", Degree: 1},
	}).Error)
	repo := NewFactRepository(db, logger.NewNoopLogger(), nil)

	facts, err := repo.LoadFacts(context.Background(), []string{"E-3"})
	require.NoError(t, err)
	rels := facts["E-3"].Relationships
	require.Len(t, rels, 4)

	byRelated := make(map[string]models.RelationshipFact, len(rels))
	for _, r := range rels {
		byRelated[r.RelatedEntityID] = r
	}
	assert.True(t, byRelated["R-1"].IsBidirectional())
	assert.True(t, byRelated["R-2"].IsBidirectional())
	assert.Equal(t, constants.DirectionFrom, byRelated["R-3"].Direction)
	assert.Equal(t, constants.DirectionTo, byRelated["R-4"].Direction)
}

func TestFactRepository_LoadFactsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFactRepository(db, logger.NewNoopLogger(), nil)

	facts, err := repo.LoadFacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestFactRepository_ListEntityIDs(t *testing.T) {
	db := setupTestDB(t)
	seedWarehouse(t, db)
	repo := NewFactRepository(db, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	page, err := repo.ListEntityIDs(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"E-1", "E-2"}, page)

	page, err = repo.ListEntityIDs(ctx, "E-2", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"E-3"}, page)

	_, err = repo.ListEntityIDs(ctx, "", 0)
	assert.Error(t, err)
}

func sampleProfile(id string, score float64, tier constants.SeverityTier) *models.EntityRiskProfile {
	return &models.EntityRiskProfile{
		EntityID: id,
		PEP: models.PepClassification{
			IsPEP:          true,
			Roles:          []string{"HOS:L1"},
			MaxPriority:    90,
			RiskMultiplier: 1.3,
			Rating:         &models.Rating{Letter: "A", AsOf: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
		EventScore:        120,
		GeographicScore:   70,
		RelationshipScore: 12.5,
		FinalScore:        score,
		SeverityTier:      tier,
		AppliedFloor:      constants.FloorConviction,
		SkippedFacts:      1,
		ScoredAt:          time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRiskRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRiskRepository(db, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	profile := sampleProfile("E-1", 91.5, constants.TierCritical)
	require.NoError(t, repo.UpsertProfiles(ctx, []*models.EntityRiskProfile{profile}))

	got, err := repo.GetProfile(ctx, "E-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 91.5, got.FinalScore)
	assert.Equal(t, constants.TierCritical, got.SeverityTier)
	assert.Equal(t, constants.FloorConviction, got.AppliedFloor)
	assert.Equal(t, []string{"HOS:L1"}, got.PEP.Roles)
	require.NotNil(t, got.PEP.Rating)
	assert.Equal(t, "A", got.PEP.Rating.Letter)
	assert.True(t, profile.ScoredAt.Equal(got.ScoredAt))

	// A second upsert replaces the stored profile.
	updated := sampleProfile("E-1", 35, constants.TierProbative)
	updated.PEP = models.NotPEP()
	require.NoError(t, repo.UpsertProfiles(ctx, []*models.EntityRiskProfile{updated}))

	got, err = repo.GetProfile(ctx, "E-1")
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.FinalScore)
	assert.False(t, got.PEP.IsPEP)
	assert.Nil(t, got.PEP.Rating)
	assert.Equal(t, []string{}, got.PEP.Roles)
}

func TestRiskRepository_GetProfileNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRiskRepository(db, logger.NewNoopLogger(), nil)

	got, err := repo.GetProfile(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRiskRepository_FinalScoresAndTiers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRiskRepository(db, logger.NewNoopLogger(), nil)
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfiles(ctx, []*models.EntityRiskProfile{
		sampleProfile("E-1", 91.5, constants.TierCritical),
		sampleProfile("E-2", 85, constants.TierCritical),
		sampleProfile("E-3", 20, constants.TierProbative),
	}))

	scores, err := repo.GetFinalScores(ctx, []string{"E-1", "E-3", "E-9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"E-1": 91.5, "E-3": 20}, scores)

	counts, err := repo.CountByTier(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[constants.TierCritical])
	assert.Equal(t, int64(1), counts[constants.TierProbative])
	assert.Zero(t, counts[constants.TierValuable])
}

func TestRiskRepository_UpsertEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRiskRepository(db, logger.NewNoopLogger(), nil)
	assert.NoError(t, repo.UpsertProfiles(context.Background(), nil))
}
