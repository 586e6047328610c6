package model

// TierEvaluation records what the oracle answered for one requirement.
type TierEvaluation struct {
	Requirement TokenRequirement `json:"requirement"`
	Quantity    string           `json:"quantity,omitempty"`
	Satisfied   bool             `json:"satisfied"`
	Error       string           `json:"error,omitempty"`
}

// Definitive reports whether the oracle produced an answer for the tier.
func (e TierEvaluation) Definitive() bool {
	return e.Error == ""
}
