package models

import "time"

// EventFact is an adverse-media or enforcement event recorded against an entity.
type EventFact struct {
	EntityID        string     `json:"entity_id"`
	CategoryCode    string     `json:"category_code"`
	SubCategoryCode string     `json:"sub_category_code,omitempty"` // empty means unknown
	EventDate       *time.Time `json:"event_date,omitempty"`        // nil when missing or malformed
	Description     string     `json:"description,omitempty"`
}

// HasSubCategory reports whether the event carries a sub-category code.
func (e EventFact) HasSubCategory() bool {
	return e.SubCategoryCode != ""
}
