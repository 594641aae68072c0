package models

import (
	"time"

	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// EntityRiskProfile is the complete scoring output for one entity.
// A profile is built once per scoring call and never mutated afterwards.
type EntityRiskProfile struct {
	EntityID          string                 `json:"entity_id"`
	PEP               PepClassification      `json:"pep"`
	EventScore        float64                `json:"event_score"`
	GeographicScore   float64                `json:"geographic_score"`
	RelationshipScore float64                `json:"relationship_score"`
	FinalScore        float64                `json:"final_score"`
	SeverityTier      constants.SeverityTier `json:"severity_tier"`
	AppliedFloor      constants.FloorRule    `json:"applied_floor,omitempty"`
	SkippedFacts      int                    `json:"skipped_facts"`
	ScoredAt          time.Time              `json:"scored_at"`
}

// ScoreResult is the per-entity outcome of a batch: either a profile or the
// reason the score is unavailable. A failed entity never carries a zero score.
type ScoreResult struct {
	EntityID string
	Profile  *EntityRiskProfile
	Err      error
}

// Unavailable reports whether the entity could not be scored.
func (r ScoreResult) Unavailable() bool {
	return r.Profile == nil
}

// Reason returns the human-readable failure reason, empty on success.
func (r ScoreResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	if riskErr, ok := errors.AsRiskError(r.Err); ok {
		if reason, ok := riskErr.Metadata()["reason"].(string); ok && reason != "" {
			return reason
		}
	}
	return r.Err.Error()
}
