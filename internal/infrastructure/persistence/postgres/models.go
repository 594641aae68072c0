package postgres

import (
	"time"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/utils"
)

// EntityRow is the warehouse entity master record.
type EntityRow struct {
	EntityID   string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"size:255"`
	EntityType string `gorm:"size:32"`
	CreatedAt  time.Time
}

func (EntityRow) TableName() string { return "entities" }

// AttributeRow is one coded attribute, e.g. PTY "HOS:L1".
type AttributeRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	EntityID  string `gorm:"size:64;index"`
	CodeType  string `gorm:"size:8"`
	Value     string `gorm:"size:512"`
	CreatedAt time.Time
}

func (AttributeRow) TableName() string { return "entity_attributes" }

// EventRow is one adverse event. EventDate is the raw warehouse text.
type EventRow struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	EntityID        string `gorm:"size:64;index"`
	CategoryCode    string `gorm:"size:8"`
	SubCategoryCode string `gorm:"size:8"`
	EventDate       string `gorm:"size:32"`
	Description     string `gorm:"type:text"`
}

func (EventRow) TableName() string { return "entity_events" }

type AddressRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	EntityID    string `gorm:"size:64;index"`
	Country     string `gorm:"size:128"`
	AddressType string `gorm:"size:32"`
}

func (AddressRow) TableName() string { return "entity_addresses" }

type RelationshipRow struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	EntityID         string `gorm:"size:64;index"`
	RelatedEntityID  string `gorm:"size:64;index"`
	RelationshipType string `gorm:"size:64"`
	Direction        string `gorm:"size:16"`
	Degree           int
}

func (RelationshipRow) TableName() string { return "entity_relationships" }

// RiskProfileRow is the persisted form of models.EntityRiskProfile.
type RiskProfileRow struct {
	EntityID          string   `gorm:"primaryKey;size:64"`
	IsPEP             bool     `gorm:"column:is_pep"`
	PEPRoles          []string `gorm:"column:pep_roles;serializer:json;type:text"`
	MaxPriority       int
	RiskMultiplier    float64
	RatingLetter      string `gorm:"size:1"`
	RatingAsOf        *time.Time
	EventScore        float64
	GeographicScore   float64
	RelationshipScore float64
	FinalScore        float64 `gorm:"index"`
	SeverityTier      string  `gorm:"size:16;index"`
	AppliedFloor      string  `gorm:"size:16"`
	SkippedFacts      int
	ScoredAt          time.Time
	UpdatedAt         time.Time
}

func (RiskProfileRow) TableName() string { return "entity_risk_profiles" }

func (r AttributeRow) toDomain() models.RawAttribute {
	return models.RawAttribute{
		EntityID:  r.EntityID,
		CodeType:  constants.CodeType(r.CodeType),
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
	}
}

func (r EventRow) toDomain() models.EventFact {
	return models.EventFact{
		EntityID:        r.EntityID,
		CategoryCode:    r.CategoryCode,
		SubCategoryCode: r.SubCategoryCode,
		EventDate:       utils.ParseWarehouseDate(r.EventDate),
		Description:     r.Description,
	}
}

func (r AddressRow) toDomain() models.AddressFact {
	return models.AddressFact{
		EntityID:    r.EntityID,
		Country:     r.Country,
		AddressType: r.AddressType,
	}
}

func (r RelationshipRow) toDomain() models.RelationshipFact {
	return models.RelationshipFact{
		SourceEntityID:  r.EntityID,
		RelatedEntityID: r.RelatedEntityID,
		Type:            r.RelationshipType,
		Direction:       models.ParseDirection(r.Direction),
		Degree:          r.Degree,
	}
}

func (r RiskProfileRow) toDomain() *models.EntityRiskProfile {
	pep := models.PepClassification{
		IsPEP:          r.IsPEP,
		Roles:          r.PEPRoles,
		MaxPriority:    r.MaxPriority,
		RiskMultiplier: r.RiskMultiplier,
	}
	if pep.Roles == nil {
		pep.Roles = []string{}
	}
	if r.RatingLetter != "" && r.RatingAsOf != nil {
		pep.Rating = &models.Rating{Letter: r.RatingLetter, AsOf: r.RatingAsOf.UTC()}
	}
	return &models.EntityRiskProfile{
		EntityID:          r.EntityID,
		PEP:               pep,
		EventScore:        r.EventScore,
		GeographicScore:   r.GeographicScore,
		RelationshipScore: r.RelationshipScore,
		FinalScore:        r.FinalScore,
		SeverityTier:      constants.SeverityTier(r.SeverityTier),
		AppliedFloor:      constants.FloorRule(r.AppliedFloor),
		SkippedFacts:      r.SkippedFacts,
		ScoredAt:          r.ScoredAt.UTC(),
	}
}

func profileRowFromDomain(p *models.EntityRiskProfile) RiskProfileRow {
	row := RiskProfileRow{
		EntityID:          p.EntityID,
		IsPEP:             p.PEP.IsPEP,
		PEPRoles:          p.PEP.Roles,
		MaxPriority:       p.PEP.MaxPriority,
		RiskMultiplier:    p.PEP.RiskMultiplier,
		EventScore:        p.EventScore,
		GeographicScore:   p.GeographicScore,
		RelationshipScore: p.RelationshipScore,
		FinalScore:        p.FinalScore,
		SeverityTier:      string(p.SeverityTier),
		AppliedFloor:      string(p.AppliedFloor),
		SkippedFacts:      p.SkippedFacts,
		ScoredAt:          p.ScoredAt,
	}
	if row.PEPRoles == nil {
		row.PEPRoles = []string{}
	}
	if p.PEP.Rating != nil {
		row.RatingLetter = p.PEP.Rating.Letter
		row.RatingAsOf = utils.TimePtr(p.PEP.Rating.AsOf)
	}
	return row
}
