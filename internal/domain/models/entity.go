package models

// EntityFacts bundles every raw fact known about one entity.
type EntityFacts struct {
	EntityID      string             `json:"entity_id"`
	Attributes    []RawAttribute     `json:"attributes"`
	Events        []EventFact        `json:"events"`
	Addresses     []AddressFact      `json:"addresses"`
	Relationships []RelationshipFact `json:"relationships"`
}

// RelatedEntityIDs returns the distinct related entity ids that still need a score.
func (f EntityFacts) RelatedEntityIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range f.Relationships {
		if r.RelatedRiskScore != nil || r.RelatedEntityID == "" {
			continue
		}
		if _, ok := seen[r.RelatedEntityID]; ok {
			continue
		}
		seen[r.RelatedEntityID] = struct{}{}
		ids = append(ids, r.RelatedEntityID)
	}
	return ids
}
