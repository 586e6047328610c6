package guard

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

// ChainIdentity pins proofs to the network and contract this deployment serves.
type ChainIdentity struct {
	ChainID  uint64
	Contract common.Address
}

func NewChainIdentity(chainID uint64, contract common.Address) *ChainIdentity {
	return &ChainIdentity{ChainID: chainID, Contract: contract}
}

func (c *ChainIdentity) Check(proof model.Proof) error {
	if proof.ChainID != c.ChainID {
		return fmt.Errorf("%w: proof chain id %d, deployment serves %d", gate_errors.ErrChainMismatch, proof.ChainID, c.ChainID)
	}
	if strings.ToLower(proof.ContractAddress.Hex()) != strings.ToLower(c.Contract.Hex()) {
		return fmt.Errorf("%w: proof contract %s, deployment serves %s", gate_errors.ErrChainMismatch, proof.ContractAddress.Hex(), c.Contract.Hex())
	}
	return nil
}
