package service

import (
	"fmt"
	"sort"

	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/reference"
)

// PepClassifier reduces an entity's PEP facts to a single classification.
type PepClassifier struct {
	tables *reference.Tables
}

// NewPepClassifier creates a classifier bound to tables.
func NewPepClassifier(tables *reference.Tables) *PepClassifier {
	return &PepClassifier{tables: tables}
}

type indexedPepFact struct {
	fact  models.PepFact
	index int
	key   string
}

// Classify derives the PEP classification. The result does not depend on the
// order of facts, except that two ratings with the same date resolve to the
// one that appears last.
func (c *PepClassifier) Classify(facts []models.PepFact) models.PepClassification {
	if len(facts) == 0 {
		return models.NotPEP()
	}

	ordered := make([]indexedPepFact, len(facts))
	for i, f := range facts {
		ordered[i] = indexedPepFact{fact: f, index: i, key: canonicalKey(f)}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].key < ordered[j].key
	})

	result := models.PepClassification{
		IsPEP:          true,
		Roles:          []string{},
		RiskMultiplier: 1.0,
	}
	roles := make(map[string]struct{})
	var latest *models.Rating
	latestIndex := -1

	for _, of := range ordered {
		priority, multiplier := c.weigh(of.fact)
		if priority > result.MaxPriority {
			result.MaxPriority = priority
		}
		if multiplier > result.RiskMultiplier {
			result.RiskMultiplier = multiplier
		}

		switch f := of.fact.(type) {
		case models.RoleLevel:
			roles[f.RoleCode] = struct{}{}
		case models.RoleOnly:
			roles[f.RoleCode] = struct{}{}
		case models.Rating:
			if latest == nil || f.AsOf.After(latest.AsOf) ||
				(f.AsOf.Equal(latest.AsOf) && of.index > latestIndex) {
				r := f
				latest = &r
				latestIndex = of.index
			}
		}
	}

	for code := range roles {
		result.Roles = append(result.Roles, code)
	}
	sort.Strings(result.Roles)
	result.Rating = latest
	return result
}

// weigh returns the priority and risk multiplier one fact contributes.
func (c *PepClassifier) weigh(fact models.PepFact) (int, float64) {
	switch f := fact.(type) {
	case models.RoleLevel:
		return c.tables.RolePriority(f.RoleCode, f.Level), c.tables.RoleMultiplier(f.RoleCode)
	case models.RoleOnly:
		return c.tables.RolePriority(f.RoleCode, 0), c.tables.RoleMultiplier(f.RoleCode)
	case models.Association:
		return c.tables.AssociationPriority, c.tables.AssociationMultiplier
	default:
		return 0, 1.0
	}
}

func canonicalKey(f models.PepFact) string {
	switch v := f.(type) {
	case models.RoleLevel:
		return fmt.Sprintf("1|%s|%d", v.RoleCode, v.Level)
	case models.RoleOnly:
		return "2|" + v.RoleCode
	case models.Association:
		return "3|" + v.Description
	case models.Rating:
		return "4|" + v.AsOf.Format("20060102") + "|" + v.Letter
	default:
		return "9|" + f.Kind()
	}
}
