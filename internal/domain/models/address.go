package models

// AddressFact is one address of an entity. Country is free text as stored
// in the warehouse and may be empty.
type AddressFact struct {
	EntityID    string `json:"entity_id"`
	Country     string `json:"country,omitempty"`
	AddressType string `json:"address_type,omitempty"`
}
