package models

import (
	"fmt"
	"time"

	"github.com/turtacn/gridrisk/pkg/constants"
)

// RawAttribute is one attribute row as stored in the warehouse.
type RawAttribute struct {
	EntityID  string             `json:"entity_id"`
	CodeType  constants.CodeType `json:"code_type"`
	Value     string             `json:"value"`
	CreatedAt time.Time          `json:"created_at,omitempty"`
}

// AttributeFact is a structured fact recovered from a RawAttribute.
// The set of implementations is closed: RoleLevel, RoleOnly, Association,
// Rating and Nationality.
type AttributeFact interface {
	attributeFact()
	// Kind returns a stable, human-readable variant name.
	Kind() string
}

// PepFact is the subset of attribute facts that feed PEP classification.
type PepFact interface {
	AttributeFact
	pepFact()
}

// RoleLevel is a PEP role with an explicit seniority level, e.g. HOS:L1.
type RoleLevel struct {
	RoleCode string `json:"role_code"`
	Level    int    `json:"level"`
}

// RoleOnly is a bare PEP role code such as FAM or ASC.
type RoleOnly struct {
	RoleCode string `json:"role_code"`
}

// Association is a free-text "family member of ..." link to a PEP.
type Association struct {
	Description string `json:"description"`
}

// Rating is a PEP rating letter (A-D) with the date it was assigned.
type Rating struct {
	Letter string    `json:"letter"`
	AsOf   time.Time `json:"as_of"`
}

// Nationality is a normalised nationality country code.
type Nationality struct {
	Country string `json:"country"`
}

func (RoleLevel) attributeFact()   {}
func (RoleOnly) attributeFact()    {}
func (Association) attributeFact() {}
func (Rating) attributeFact()      {}
func (Nationality) attributeFact() {}

func (RoleLevel) pepFact()   {}
func (RoleOnly) pepFact()    {}
func (Association) pepFact() {}
func (Rating) pepFact()      {}

func (RoleLevel) Kind() string   { return "role_level" }
func (RoleOnly) Kind() string    { return "role_only" }
func (Association) Kind() string { return "association" }
func (Rating) Kind() string      { return "rating" }
func (Nationality) Kind() string { return "nationality" }

// LevelCode renders the level as it appears in the warehouse, e.g. "L3".
func (r RoleLevel) LevelCode() string {
	return fmt.Sprintf("L%d", r.Level)
}

func (r RoleLevel) String() string {
	return r.RoleCode + ":" + r.LevelCode()
}

func (r Rating) String() string {
	return r.Letter + ":" + r.AsOf.Format("01/02/2006")
}

// PepFacts keeps only the PEP variants of facts, preserving order.
func PepFacts(facts []AttributeFact) []PepFact {
	out := make([]PepFact, 0, len(facts))
	for _, f := range facts {
		if p, ok := f.(PepFact); ok {
			out = append(out, p)
		}
	}
	return out
}
