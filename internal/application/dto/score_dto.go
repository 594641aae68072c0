// Package dto defines the request and response shapes of the scoring API.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/utils"
)

// Result status values.
const (
	StatusScored      = "scored"
	StatusUnavailable = "unavailable"
)

// ================================================================================
// Requests
// ================================================================================

type AttributeDTO struct {
	CodeType  string `json:"code_type" validate:"required,max=8"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at,omitempty"`
}

type EventDTO struct {
	CategoryCode    string `json:"category_code" validate:"required,max=8"`
	SubCategoryCode string `json:"sub_category_code,omitempty" validate:"max=8"`
	EventDate       string `json:"event_date,omitempty"`
	Description     string `json:"description,omitempty"`
}

type AddressDTO struct {
	Country     string `json:"country,omitempty"`
	AddressType string `json:"address_type,omitempty"`
}

type RelationshipDTO struct {
	RelatedEntityID  string   `json:"related_entity_id" validate:"required,entity_id"`
	Type             string   `json:"type,omitempty"`
	Direction        string   `json:"direction,omitempty" validate:"omitempty,oneof=TO FROM BIDIRECTIONAL"`
	Degree           int      `json:"degree,omitempty" validate:"gte=0"`
	RelatedRiskScore *float64 `json:"related_risk_score,omitempty" validate:"omitempty,gte=0,lte=120"`
}

// EntityFactsDTO carries every fact of one entity supplied by the caller.
type EntityFactsDTO struct {
	EntityID      string            `json:"entity_id" validate:"required,entity_id"`
	Attributes    []AttributeDTO    `json:"attributes,omitempty" validate:"dive"`
	Events        []EventDTO        `json:"events,omitempty" validate:"dive"`
	Addresses     []AddressDTO      `json:"addresses,omitempty" validate:"dive"`
	Relationships []RelationshipDTO `json:"relationships,omitempty" validate:"dive"`
}

// ScoreFactsRequest scores caller-supplied facts. Profiles are persisted
// only when Persist is set.
type ScoreFactsRequest struct {
	Entities []EntityFactsDTO `json:"entities" validate:"required,min=1,dive"`
	AsOf     string           `json:"as_of,omitempty"`
	Persist  bool             `json:"persist,omitempty"`
}

// ScoreEntitiesRequest scores entities whose facts live in the warehouse.
type ScoreEntitiesRequest struct {
	EntityIDs []string `json:"entity_ids" validate:"required,min=1,dive,entity_id"`
	AsOf      string   `json:"as_of,omitempty"`
}

// ToModel converts the DTO into domain facts. Malformed dates become unknown dates.
func (e EntityFactsDTO) ToModel() models.EntityFacts {
	facts := models.EntityFacts{EntityID: e.EntityID}
	for _, a := range e.Attributes {
		attr := models.RawAttribute{
			EntityID: e.EntityID,
			CodeType: constants.CodeType(a.CodeType),
			Value:    a.Value,
		}
		if t := utils.ParseWarehouseDate(a.CreatedAt); t != nil {
			attr.CreatedAt = *t
		}
		facts.Attributes = append(facts.Attributes, attr)
	}
	for _, ev := range e.Events {
		facts.Events = append(facts.Events, models.EventFact{
			EntityID:        e.EntityID,
			CategoryCode:    ev.CategoryCode,
			SubCategoryCode: ev.SubCategoryCode,
			EventDate:       utils.ParseWarehouseDate(ev.EventDate),
			Description:     ev.Description,
		})
	}
	for _, a := range e.Addresses {
		facts.Addresses = append(facts.Addresses, models.AddressFact{
			EntityID:    e.EntityID,
			Country:     a.Country,
			AddressType: a.AddressType,
		})
	}
	for _, r := range e.Relationships {
		facts.Relationships = append(facts.Relationships, models.RelationshipFact{
			SourceEntityID:   e.EntityID,
			RelatedEntityID:  r.RelatedEntityID,
			Type:             r.Type,
			Direction:        models.ParseDirection(r.Direction),
			Degree:           r.Degree,
			RelatedRiskScore: r.RelatedRiskScore,
		})
	}
	return facts
}

// ParseAsOf resolves the scoring reference date; empty means now.
func ParseAsOf(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	t := utils.ParseWarehouseDate(s)
	if t == nil {
		return time.Time{}, errors.ErrInvalidRequest("as_of is not a valid date").WithMetadata("as_of", s)
	}
	return *t, nil
}

// ================================================================================
// Responses
// ================================================================================

type PepDTO struct {
	IsPEP          bool     `json:"is_pep"`
	Roles          []string `json:"roles"`
	MaxPriority    int      `json:"max_priority"`
	RiskMultiplier float64  `json:"risk_multiplier"`
	Rating         string   `json:"rating,omitempty"`
	RatingDate     string   `json:"rating_date,omitempty"`
}

// ProfileDTO is one entity's result. A failed entity has status
// "unavailable" and a reason, and carries no scores.
type ProfileDTO struct {
	EntityID          string   `json:"entity_id"`
	Status            string   `json:"status"`
	Reason            string   `json:"reason,omitempty"`
	PEP               *PepDTO  `json:"pep,omitempty"`
	EventScore        *float64 `json:"event_score,omitempty"`
	GeographicScore   *float64 `json:"geographic_score,omitempty"`
	RelationshipScore *float64 `json:"relationship_score,omitempty"`
	FinalScore        *float64 `json:"final_score,omitempty"`
	SeverityTier      string   `json:"severity_tier,omitempty"`
	AppliedFloor      string   `json:"applied_floor,omitempty"`
	SkippedFacts      int      `json:"skipped_facts,omitempty"`
	ScoredAt          string   `json:"scored_at,omitempty"`
}

type BatchScoreResponse struct {
	BatchID     string       `json:"batch_id"`
	AsOf        string       `json:"as_of"`
	Requested   int          `json:"requested"`
	Scored      int          `json:"scored"`
	Unavailable int          `json:"unavailable"`
	Incomplete  bool         `json:"incomplete"`
	DurationMS  int64        `json:"duration_ms"`
	Results     []ProfileDTO `json:"results"`
}

type TierSummaryResponse struct {
	Total int64            `json:"total"`
	Tiers map[string]int64 `json:"tiers"`
}

// Round2 rounds a score for presentation. Internal computation keeps full precision.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Truncate2 cuts a score to 2 decimal places. The final score is truncated so
// the rendered value never reaches a tier cutoff the unrounded score missed.
func Truncate2(v float64) float64 {
	return decimal.NewFromFloat(v).Truncate(2).InexactFloat64()
}

func rounded(v float64) *float64 {
	r := Round2(v)
	return &r
}

func truncated(v float64) *float64 {
	r := Truncate2(v)
	return &r
}

// FromProfile renders a scored profile.
func FromProfile(p *models.EntityRiskProfile) ProfileDTO {
	roles := p.PEP.Roles
	if roles == nil {
		roles = []string{}
	}
	pep := &PepDTO{
		IsPEP:          p.PEP.IsPEP,
		Roles:          roles,
		MaxPriority:    p.PEP.MaxPriority,
		RiskMultiplier: Round2(p.PEP.RiskMultiplier),
	}
	if p.PEP.Rating != nil {
		pep.Rating = p.PEP.Rating.Letter
		pep.RatingDate = p.PEP.Rating.AsOf.Format("2006-01-02")
	}
	return ProfileDTO{
		EntityID:          p.EntityID,
		Status:            StatusScored,
		PEP:               pep,
		EventScore:        rounded(p.EventScore),
		GeographicScore:   rounded(p.GeographicScore),
		RelationshipScore: rounded(p.RelationshipScore),
		FinalScore:        truncated(p.FinalScore),
		SeverityTier:      string(p.SeverityTier),
		AppliedFloor:      string(p.AppliedFloor),
		SkippedFacts:      p.SkippedFacts,
		ScoredAt:          p.ScoredAt.Format(time.RFC3339),
	}
}

// FromResult renders a batch outcome, scored or unavailable.
func FromResult(r models.ScoreResult) ProfileDTO {
	if r.Unavailable() {
		return ProfileDTO{
			EntityID: r.EntityID,
			Status:   StatusUnavailable,
			Reason:   r.Reason(),
		}
	}
	return FromProfile(r.Profile)
}

//Personal.AI order the ending
