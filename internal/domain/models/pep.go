package models

// PepClassification is the derived PEP status of one entity.
type PepClassification struct {
	IsPEP          bool     `json:"is_pep"`
	Roles          []string `json:"roles"`
	MaxPriority    int      `json:"max_priority"`
	RiskMultiplier float64  `json:"risk_multiplier"`
	Rating         *Rating  `json:"rating,omitempty"`
}

// NotPEP is the classification of an entity without any PEP facts.
func NotPEP() PepClassification {
	return PepClassification{
		IsPEP:          false,
		Roles:          []string{},
		MaxPriority:    0,
		RiskMultiplier: 1.0,
	}
}
