package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/internal/domain/service"
	servicemocks "github.com/turtacn/gridrisk/internal/domain/service/mocks"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/utils"
)

var asOf = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func newTestBatchScorer(workers int) *BatchScorer {
	return NewBatchScorer(service.NewStaticTables(reference.Defaults()), service.EngineOptions{}, workers, nil, nil)
}

// panicScorer blows up on one entity id and scores everything else as Probative.
type panicScorer struct {
	tables  *reference.Tables
	boom    string
	started int32
}

func (p *panicScorer) Score(_ context.Context, facts models.EntityFacts, at time.Time) (*models.EntityRiskProfile, error) {
	atomic.AddInt32(&p.started, 1)
	if facts.EntityID == p.boom {
		panic("index out of range")
	}
	return &models.EntityRiskProfile{EntityID: facts.EntityID, SeverityTier: constants.TierProbative, ScoredAt: at}, nil
}

func (p *panicScorer) Tables() *reference.Tables { return p.tables }

func TestBatchScorer_ScoresAllInInputOrder(t *testing.T) {
	b := newTestBatchScorer(4)
	entities := []models.EntityFacts{
		{EntityID: "E-1", Events: []models.EventFact{{EntityID: "E-1", CategoryCode: "TER", EventDate: utils.TimePtr(asOf)}}},
		{EntityID: "E-2"},
		{EntityID: "E-3", Addresses: []models.AddressFact{{EntityID: "E-3", Country: "GB"}}},
	}

	res := b.Score(context.Background(), entities, asOf)

	require.Len(t, res.Results, 3)
	assert.True(t, res.Complete)
	assert.NotEmpty(t, res.BatchID)
	for i, e := range entities {
		assert.Equal(t, e.EntityID, res.Results[i].EntityID)
		require.NotNil(t, res.Results[i].Profile)
	}
	assert.GreaterOrEqual(t, res.Results[0].Profile.FinalScore, 90.0)
	assert.Equal(t, 3, res.Scored())
	assert.Len(t, res.Profiles(), 3)
}

func TestBatchScorer_FailureIsolatedToEntity(t *testing.T) {
	b := newTestBatchScorer(2)
	entities := []models.EntityFacts{
		{EntityID: "E-1"},
		{EntityID: "E-2", Relationships: []models.RelationshipFact{{SourceEntityID: "E-2", RelatedEntityID: "E-9", Direction: constants.DirectionTo}}},
		{EntityID: "E-3"},
	}

	res := b.Score(context.Background(), entities, asOf)

	require.Len(t, res.Results, 3)
	assert.True(t, res.Complete)
	assert.False(t, res.Results[0].Unavailable())
	assert.True(t, res.Results[1].Unavailable())
	assert.True(t, errors.HasCode(res.Results[1].Err, constants.ErrCodeScoringError))
	assert.NotEmpty(t, res.Results[1].Reason())
	assert.False(t, res.Results[2].Unavailable())
	assert.Equal(t, 1, res.Unavailable())
}

func TestBatchScorer_PanicBecomesScoringError(t *testing.T) {
	b := newTestBatchScorer(1)
	ps := &panicScorer{tables: reference.Defaults(), boom: "E-2"}
	b.newScorer = func(*reference.Tables) service.EntityScorer { return ps }

	res := b.Score(context.Background(), []models.EntityFacts{{EntityID: "E-1"}, {EntityID: "E-2"}, {EntityID: "E-3"}}, asOf)

	require.Len(t, res.Results, 3)
	assert.True(t, res.Results[1].Unavailable())
	assert.True(t, errors.HasCode(res.Results[1].Err, constants.ErrCodeScoringError))
	assert.Contains(t, res.Results[1].Reason(), "index out of range")
	assert.False(t, res.Results[2].Unavailable())
}

func TestBatchScorer_CancelledContextStartsNothing(t *testing.T) {
	b := newTestBatchScorer(2)
	ps := &panicScorer{tables: reference.Defaults()}
	b.newScorer = func(*reference.Tables) service.EntityScorer { return ps }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := b.Score(ctx, []models.EntityFacts{{EntityID: "E-1"}, {EntityID: "E-2"}}, asOf)

	assert.Empty(t, res.Results)
	assert.False(t, res.Complete)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ps.started))
}

func TestBatchScorer_DeadlineReturnsCompletedSubset(t *testing.T) {
	b := newTestBatchScorer(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := &servicemocks.MockEntityScorer{}
	scorer.On("Score", mock.Anything, mock.MatchedBy(func(f models.EntityFacts) bool { return f.EntityID == "E-1" }), asOf).
		Run(func(mock.Arguments) { cancel() }).
		Return(&models.EntityRiskProfile{EntityID: "E-1", SeverityTier: constants.TierProbative}, nil)
	b.newScorer = func(*reference.Tables) service.EntityScorer { return scorer }

	res := b.Score(ctx, []models.EntityFacts{{EntityID: "E-1"}, {EntityID: "E-2"}, {EntityID: "E-3"}}, asOf)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "E-1", res.Results[0].EntityID)
	assert.False(t, res.Results[0].Unavailable(), "a started entity finishes all-or-nothing")
	assert.False(t, res.Complete)
	scorer.AssertNumberOfCalls(t, "Score", 1)
}

func TestBatchScorer_RecordsMetrics(t *testing.T) {
	m := &servicemocks.MockMetrics{}
	m.On("RecordEntityScored", string(constants.TierProbative), true, mock.Anything).Twice()
	m.On("RecordBatch", 2, 0, mock.Anything).Once()
	m.On("RecordParseFailure", mock.Anything).Maybe()

	b := NewBatchScorer(service.NewStaticTables(reference.Defaults()), service.EngineOptions{}, 2, nil, m)
	b.Score(context.Background(), []models.EntityFacts{{EntityID: "E-1"}, {EntityID: "E-2"}}, asOf)

	m.AssertExpectations(t)
}

func TestBatchScorer_Deterministic(t *testing.T) {
	b := newTestBatchScorer(8)
	entities := []models.EntityFacts{{
		EntityID: "E-1",
		Attributes: []models.RawAttribute{
			{EntityID: "E-1", CodeType: constants.CodeTypePEPRole, Value: "HOS:L1"},
		},
		Events: []models.EventFact{
			{EntityID: "E-1", CategoryCode: "MLA", SubCategoryCode: "CVT", EventDate: utils.TimePtr(asOf.AddDate(0, -6, 0))},
		},
		Addresses: []models.AddressFact{{EntityID: "E-1", Country: "RUSSIAN FEDERATION"}},
	}}

	first := b.Score(context.Background(), entities, asOf)
	second := b.Score(context.Background(), entities, asOf)

	require.Len(t, first.Results, 1)
	require.Len(t, second.Results, 1)
	assert.Equal(t, first.Results[0].Profile, second.Results[0].Profile)
}
