package signature

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

// Verifier recovers the signing address of a proof. It holds no state.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify reconstructs the digest and recovers the signer from it. It does
// not compare the result with any declared address.
func (v *Verifier) Verify(proof model.Proof) (common.Address, error) {
	digest := ProofDigest(proof)
	if proof.Digest != nil && *proof.Digest != digest {
		return common.Address{}, fmt.Errorf("%w: declared digest does not match %s encoding", gate_errors.ErrInvalidSignature, DigestVersion)
	}

	sig := make([]byte, model.SignatureLength)
	copy(sig, proof.Signature[:])
	recID := sig[64]
	if recID >= 27 {
		recID -= 27
	}
	if recID > 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id %d", gate_errors.ErrInvalidSignature, sig[64])
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(recID, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: signature values out of range", gate_errors.ErrInvalidSignature)
	}
	sig[64] = recID

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", gate_errors.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign fills proof.Signature the way a wallet's personal_sign would, with
// V in {27, 28}.
func Sign(proof *model.Proof, key *ecdsa.PrivateKey) error {
	digest := ProofDigest(*proof)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return err
	}
	sig[64] += 27
	copy(proof.Signature[:], sig)
	return nil
}
