package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SignatureLength is the size of an r || s || v secp256k1 signature.
const SignatureLength = 65

// Proof is the validated form of a caller-supplied ownership proof. It is
// only produced by the codec; Signer and Digest are declarations, never
// trusted until the verifier has reconstructed and recovered them.
type Proof struct {
	Signer           *common.Address
	Signature        [SignatureLength]byte
	Digest           *common.Hash
	TimestampSeconds int64
	Nonce            string
	ChainID          uint64
	ContractAddress  common.Address
	TokenID          *big.Int
}
