package service

import (
	"context"
	"time"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// EngineOptions toggle optional scoring behaviour.
type EngineOptions struct {
	// IncludeNationality folds NAT attributes into the geographic sub-score.
	IncludeNationality bool
}

// ScoringEngine wires the parser, classifier and sub-scorers into one
// per-entity computation. It holds no mutable state and is safe for
// concurrent use.
type ScoringEngine struct {
	tables        *reference.Tables
	parser        *AttributeParser
	classifier    *PepClassifier
	events        *EventAggregator
	geo           *GeoResolver
	relationships *RelationshipPropagator
	composite     *CompositeScorer
	opts          EngineOptions
	logger        logger.Logger
	metrics       Metrics
}

// NewScoringEngine builds an engine over one table snapshot.
func NewScoringEngine(tables *reference.Tables, opts EngineOptions, log logger.Logger, metrics Metrics) *ScoringEngine {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &ScoringEngine{
		tables:        tables,
		parser:        NewAttributeParser(tables),
		classifier:    NewPepClassifier(tables),
		events:        NewEventAggregator(tables),
		geo:           NewGeoResolver(tables),
		relationships: NewRelationshipPropagator(tables),
		composite:     NewCompositeScorer(tables),
		opts:          opts,
		logger:        log.WithComponent("scoring_engine"),
		metrics:       metrics,
	}
}

// Tables returns the snapshot this engine scores against.
func (e *ScoringEngine) Tables() *reference.Tables {
	return e.tables
}

// Score computes the risk profile of one entity. Parse failures are logged and
// skipped; any other problem fails this entity with a scoring_error.
func (e *ScoringEngine) Score(ctx context.Context, facts models.EntityFacts, asOf time.Time) (*models.EntityRiskProfile, error) {
	if facts.EntityID == "" {
		return nil, errors.ErrScoring("", "missing entity id")
	}

	parsed, failures := e.parser.ParseAll(facts.Attributes)
	for _, f := range failures {
		fields := logger.Fields{"entity_id": facts.EntityID}
		if riskErr, ok := errors.AsRiskError(f); ok {
			fields = logger.Merge(fields, riskErr.Metadata())
			if codeType, ok := riskErr.Metadata()["code_type"].(string); ok {
				e.metrics.RecordParseFailure(codeType)
			}
		}
		e.logger.Warn(ctx, "skipping unparseable attribute", fields)
	}

	pep := e.classifier.Classify(models.PepFacts(parsed))

	countries := make([]string, 0, len(facts.Addresses))
	for _, a := range facts.Addresses {
		countries = append(countries, a.Country)
	}
	if e.opts.IncludeNationality {
		for _, f := range parsed {
			if n, ok := f.(models.Nationality); ok {
				countries = append(countries, n.Country)
			}
		}
	}

	relScore, err := e.relationships.Score(facts.Relationships)
	if err != nil {
		return nil, err
	}

	eventScore := e.events.Score(facts.Events, asOf)
	geoScore := e.geo.Score(countries)

	result, err := e.composite.Score(CompositeInputs{
		EntityID:           facts.EntityID,
		EventScore:         eventScore,
		RelationshipScore:  relScore,
		GeographicScore:    geoScore,
		WorstGeoMultiplier: e.geo.WorstMultiplier(countries),
		PEP:                pep,
		Events:             facts.Events,
	})
	if err != nil {
		return nil, err
	}

	return &models.EntityRiskProfile{
		EntityID:          facts.EntityID,
		PEP:               pep,
		EventScore:        eventScore,
		GeographicScore:   geoScore,
		RelationshipScore: relScore,
		FinalScore:        result.FinalScore,
		SeverityTier:      result.SeverityTier,
		AppliedFloor:      result.AppliedFloor,
		SkippedFacts:      len(failures),
		ScoredAt:          asOf,
	}, nil
}
