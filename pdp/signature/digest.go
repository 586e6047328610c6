package signature

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

// DigestVersion is hashed into every digest. Changing field order or
// encoding below requires a new version.
const DigestVersion = "tokengate-proof-v1"

// Digest rebuilds the signed message hash from declared proof fields:
//
//	inner  = keccak256(version || contract || uint256 chainId || uint256 tokenId || keccak256(nonce) || uint256 timestamp)
//	digest = keccak256("\x19Ethereum Signed Message:\n32" || inner)
//
// The outer EIP-191 envelope lets ordinary wallets sign with personal_sign.
func Digest(contract common.Address, chainID uint64, tokenID *big.Int, nonce string, timestampSeconds int64) common.Hash {
	if tokenID == nil {
		tokenID = new(big.Int)
	}
	inner := crypto.Keccak256(
		[]byte(DigestVersion),
		contract.Bytes(),
		word(new(big.Int).SetUint64(chainID)),
		word(tokenID),
		crypto.Keccak256([]byte(nonce)),
		word(big.NewInt(timestampSeconds)),
	)
	return common.BytesToHash(accounts.TextHash(inner))
}

// ProofDigest is Digest over a parsed proof.
func ProofDigest(proof model.Proof) common.Hash {
	return Digest(proof.ContractAddress, proof.ChainID, proof.TokenID, proof.Nonce, proof.TimestampSeconds)
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}
