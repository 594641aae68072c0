package models

import (
	"strings"

	"github.com/turtacn/gridrisk/pkg/constants"
)

// RelationshipFact is an edge from the scored entity to a related entity.
// RelatedRiskScore is resolved from the profile snapshot before scoring;
// nil means it could not be resolved.
type RelationshipFact struct {
	SourceEntityID   string              `json:"source_entity_id"`
	RelatedEntityID  string              `json:"related_entity_id"`
	Type             string              `json:"type"`
	Direction        constants.Direction `json:"direction"`
	Degree           int                 `json:"degree"`
	RelatedRiskScore *float64            `json:"related_risk_score,omitempty"`
}

// EffectiveDegree returns the hop distance, treating unset or invalid values as 1.
func (r RelationshipFact) EffectiveDegree() int {
	if r.Degree < 1 {
		return 1
	}
	return r.Degree
}

// IsBidirectional reports whether the edge is mutual.
func (r RelationshipFact) IsBidirectional() bool {
	return r.Direction == constants.DirectionBidirectional
}

// ParseDirection normalises a stored or submitted direction. Case, padding and
// "-"/"_" separators are ignored; an empty value means TO.
func ParseDirection(s string) constants.Direction {
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToUpper(strings.TrimSpace(s)))
	if s == "" {
		return constants.DirectionTo
	}
	return constants.Direction(s)
}
