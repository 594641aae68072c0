package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

const bidirectionalBonus = 1.2

// RelationshipPropagator scores risk inherited from related entities. It never
// recurses: related scores come pre-resolved on each RelationshipFact.
type RelationshipPropagator struct {
	tables *reference.Tables
}

// NewRelationshipPropagator creates a propagator bound to tables.
func NewRelationshipPropagator(tables *reference.Tables) *RelationshipPropagator {
	return &RelationshipPropagator{tables: tables}
}

// Contribution is related score x type weight x 0.5^(degree-1), with a 1.2
// bonus for bidirectional edges.
func (p *RelationshipPropagator) Contribution(r models.RelationshipFact) (float64, error) {
	if r.RelatedRiskScore == nil {
		return 0, errors.ErrScoring(r.SourceEntityID,
			fmt.Sprintf("relationship to %s has no related risk score", r.RelatedEntityID))
	}
	c := *r.RelatedRiskScore * p.tables.RelationshipWeight(r.Type) *
		math.Pow(0.5, float64(r.EffectiveDegree()-1))
	if r.IsBidirectional() {
		c *= bidirectionalBonus
	}
	return c, nil
}

// Score averages the contributions, adds min(ln(n+1)*5, 20) and caps at 50.
// No relationships scores 0.
func (p *RelationshipPropagator) Score(rels []models.RelationshipFact) (float64, error) {
	if len(rels) == 0 {
		return 0, nil
	}
	contributions := make([]float64, 0, len(rels))
	for _, r := range rels {
		c, err := p.Contribution(r)
		if err != nil {
			return 0, err
		}
		contributions = append(contributions, c)
	}
	sort.Float64s(contributions)

	var total float64
	for _, c := range contributions {
		total += c
	}
	avg := total / float64(len(contributions))
	bonus := math.Min(math.Log(float64(len(contributions)+1))*5, constants.MaxNetworkBonus)
	return math.Min(avg+bonus, constants.MaxRelationshipScore), nil
}
