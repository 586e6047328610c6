package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// TokenRequirement binds a protected operation to one access tier. An
// operation with several requirements is satisfied by any one of them.
type TokenRequirement struct {
	Operation       string
	Tier            string
	TokenID         *big.Int
	MinimumQuantity uint64
}

type tokenRequirementJSON struct {
	Operation       string `json:"operation"`
	Tier            string `json:"tier,omitempty"`
	TokenID         string `json:"token_id"`
	MinimumQuantity uint64 `json:"minimum_quantity"`
}

// MarshalJSON renders the uint256 token id as a decimal string.
func (r TokenRequirement) MarshalJSON() ([]byte, error) {
	out := tokenRequirementJSON{
		Operation:       r.Operation,
		Tier:            r.Tier,
		MinimumQuantity: r.MinimumQuantity,
	}
	if r.TokenID != nil {
		out.TokenID = r.TokenID.String()
	}
	return json.Marshal(out)
}

func (r *TokenRequirement) UnmarshalJSON(data []byte) error {
	var in tokenRequirementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Operation = in.Operation
	r.Tier = in.Tier
	r.MinimumQuantity = in.MinimumQuantity
	r.TokenID = nil
	if in.TokenID != "" {
		id, ok := new(big.Int).SetString(in.TokenID, 10)
		if !ok {
			return fmt.Errorf("token_id %q is not a decimal integer", in.TokenID)
		}
		r.TokenID = id
	}
	return nil
}

// Clone returns a copy that shares no big.Int with r.
func (r TokenRequirement) Clone() TokenRequirement {
	if r.TokenID != nil {
		r.TokenID = new(big.Int).Set(r.TokenID)
	}
	return r
}

// Satisfied reports whether quantity meets the minimum.
func (r TokenRequirement) Satisfied(quantity *big.Int) bool {
	if quantity == nil {
		return false
	}
	return quantity.Cmp(new(big.Int).SetUint64(r.MinimumQuantity)) >= 0
}

// ParseTokenID accepts a decimal or 0x-prefixed hex uint256.
func ParseTokenID(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if s == "" || strings.ContainsAny(s, "+-") {
		return nil, false
	}
	id, ok := new(big.Int).SetString(s, base)
	if !ok || id.BitLen() > 256 {
		return nil, false
	}
	return id, true
}
