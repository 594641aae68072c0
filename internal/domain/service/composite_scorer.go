package service

import (
	"math"
	"strings"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// CompositeInputs are the sub-scores and evidence for one entity.
type CompositeInputs struct {
	EntityID           string
	EventScore         float64
	RelationshipScore  float64
	GeographicScore    float64
	WorstGeoMultiplier float64
	PEP                models.PepClassification
	Events             []models.EventFact
}

// CompositeResult is the final score with its tier and the floor that set it, if any.
type CompositeResult struct {
	FinalScore   float64
	SeverityTier constants.SeverityTier
	AppliedFloor constants.FloorRule
}

// CompositeScorer combines sub-scores with the configured weights, applies the
// geography and PEP multipliers, the cap, and the business floors.
type CompositeScorer struct {
	tables *reference.Tables
}

// NewCompositeScorer creates a scorer bound to tables.
func NewCompositeScorer(tables *reference.Tables) *CompositeScorer {
	return &CompositeScorer{tables: tables}
}

// PEPComponent is max_priority/100 x scale for PEPs, 0 otherwise.
func (c *CompositeScorer) PEPComponent(pep models.PepClassification) float64 {
	if !pep.IsPEP {
		return 0
	}
	return float64(pep.MaxPriority) / 100 * c.tables.PEPComponentScale
}

// Base is the weighted sum of the sub-scores.
func (c *CompositeScorer) Base(in CompositeInputs) float64 {
	w := c.tables.Weights
	return in.EventScore*w.Event +
		in.RelationshipScore*w.Relationship +
		in.GeographicScore*w.Geographic +
		c.PEPComponent(in.PEP)*w.PEP
}

// Score computes the final score. Floors are applied last, so they hold even
// when the weighted score is lower.
func (c *CompositeScorer) Score(in CompositeInputs) (CompositeResult, error) {
	final := c.Base(in) * in.WorstGeoMultiplier * in.PEP.RiskMultiplier
	if math.IsNaN(final) || math.IsInf(final, 0) {
		return CompositeResult{}, errors.ErrScoring(in.EntityID, "composite score is not a finite number")
	}
	final = math.Max(0, math.Min(final, c.tables.MaxScore))

	applied := constants.FloorNone
	for _, floor := range c.floors(in.Events) {
		if floor.value > final {
			final = floor.value
			applied = floor.rule
		}
	}

	return CompositeResult{
		FinalScore:   final,
		SeverityTier: c.tables.Tier(final),
		AppliedFloor: applied,
	}, nil
}

type floorHit struct {
	rule  constants.FloorRule
	value float64
}

// floors lists the floors triggered by events.
func (c *CompositeScorer) floors(events []models.EventFact) []floorHit {
	var conviction, sanctions, terrorism bool
	for _, e := range events {
		if c.tables.IsTerrorismCategory(e.CategoryCode) {
			terrorism = true
		}
		if c.tables.IsSanctionsCategory(e.CategoryCode) ||
			(e.HasSubCategory() && c.tables.IsSanctionsSubCategory(e.SubCategoryCode)) {
			sanctions = true
		}
		if e.HasSubCategory() && c.tables.IsConvictionSubCategory(e.SubCategoryCode) {
			conviction = true
		}
	}
	f := c.tables.Floors
	var hits []floorHit
	if conviction {
		hits = append(hits, floorHit{constants.FloorConviction, f.ConvictionFloor})
	}
	if sanctions {
		hits = append(hits, floorHit{constants.FloorSanctions, f.SanctionsFloor})
	}
	if terrorism {
		hits = append(hits, floorHit{constants.FloorTerrorism, f.TerrorismFloor})
	}
	return hits
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
