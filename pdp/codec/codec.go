// Package codec turns the caller-supplied proof object into a model.Proof.
// It checks structure and encoding only; time and crypto checks belong to
// later stages.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const (
	MaxProofBytes = 8 << 10
	MaxNonceBytes = 256
)

type wireProof struct {
	Signer          *string         `json:"signer"`
	Signature       *string         `json:"signature"`
	Digest          *string         `json:"digest"`
	Timestamp       json.RawMessage `json:"timestamp"`
	Nonce           *string         `json:"nonce"`
	ChainID         json.RawMessage `json:"chainId"`
	ContractAddress *string         `json:"contractAddress"`
	TokenID         json.RawMessage `json:"tokenId"`
}

// IsAbsent reports whether raw carries no proof at all.
func IsAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Parse validates raw and returns the canonical proof.
func Parse(raw json.RawMessage) (model.Proof, error) {
	var proof model.Proof
	if len(raw) > MaxProofBytes {
		return proof, malformed("proof exceeds %d bytes", MaxProofBytes)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return proof, malformed("proof must be a JSON object")
	}

	var wire wireProof
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return proof, malformed("decode proof: %v", err)
	}

	signature, err := parseSignature(wire.Signature)
	if err != nil {
		return proof, err
	}
	proof.Signature = signature

	if wire.Nonce == nil || strings.TrimSpace(*wire.Nonce) == "" {
		return proof, malformed("nonce is required")
	}
	if len(*wire.Nonce) > MaxNonceBytes {
		return proof, malformed("nonce exceeds %d bytes", MaxNonceBytes)
	}
	proof.Nonce = *wire.Nonce

	timestamp, err := parseInteger(wire.Timestamp, "timestamp")
	if err != nil {
		return proof, err
	}
	if !timestamp.IsInt64() {
		return proof, malformed("timestamp out of range")
	}
	proof.TimestampSeconds = timestamp.Int64()

	chainID, err := parseInteger(wire.ChainID, "chainId")
	if err != nil {
		return proof, err
	}
	if !chainID.IsUint64() {
		return proof, malformed("chainId out of range")
	}
	proof.ChainID = chainID.Uint64()

	contract, err := parseAddress(wire.ContractAddress, "contractAddress")
	if err != nil {
		return proof, err
	}
	if contract == nil {
		return proof, malformed("contractAddress is required")
	}
	proof.ContractAddress = *contract

	tokenID, err := parseInteger(wire.TokenID, "tokenId")
	if err != nil {
		return proof, err
	}
	proof.TokenID = tokenID

	if proof.Signer, err = parseAddress(wire.Signer, "signer"); err != nil {
		return proof, err
	}
	if proof.Digest, err = parseDigest(wire.Digest); err != nil {
		return proof, err
	}
	return proof, nil
}

func parseSignature(field *string) ([model.SignatureLength]byte, error) {
	var out [model.SignatureLength]byte
	if field == nil || *field == "" {
		return out, malformed("signature is required")
	}
	if !strings.HasPrefix(*field, "0x") {
		return out, malformed("signature must be 0x-prefixed hex")
	}
	if len(*field) != 2+2*model.SignatureLength {
		return out, malformed("signature must be %d bytes", model.SignatureLength)
	}
	decoded, err := hexutil.Decode(*field)
	if err != nil {
		return out, malformed("signature: %v", err)
	}
	copy(out[:], decoded)
	return out, nil
}

func parseAddress(field *string, name string) (*common.Address, error) {
	if field == nil {
		return nil, nil
	}
	if !strings.HasPrefix(*field, "0x") || !common.IsHexAddress(*field) {
		return nil, malformed("%s must be a 0x-prefixed 20-byte hex address", name)
	}
	addr := common.HexToAddress(*field)
	return &addr, nil
}

func parseDigest(field *string) (*common.Hash, error) {
	if field == nil {
		return nil, nil
	}
	if !strings.HasPrefix(*field, "0x") {
		return nil, malformed("digest must be 0x-prefixed hex")
	}
	decoded, err := hexutil.Decode(*field)
	if err != nil || len(decoded) != common.HashLength {
		return nil, malformed("digest must be %d bytes of hex", common.HashLength)
	}
	hash := common.BytesToHash(decoded)
	return &hash, nil
}

// parseInteger accepts a JSON integer, a decimal string, or a 0x hex string
// and returns a non-negative value of at most 256 bits.
func parseInteger(raw json.RawMessage, name string) (*big.Int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, malformed("%s is required", name)
	}

	text := string(trimmed)
	base := 10
	if trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil, malformed("%s: %v", name, err)
		}
		text = unquoted
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			text = text[2:]
			base = 16
		}
	}
	if text == "" || !isDigits(text, base) {
		return nil, malformed("%s must be a non-negative integer", name)
	}
	value, ok := new(big.Int).SetString(text, base)
	if !ok {
		return nil, malformed("%s must be a non-negative integer", name)
	}
	if value.BitLen() > 256 {
		return nil, malformed("%s exceeds 256 bits", name)
	}
	return value, nil
}

func isDigits(s string, base int) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case base == 16 && ((r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')):
		default:
			return false
		}
	}
	return true
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gate_errors.ErrMalformedProof, fmt.Sprintf(format, args...))
}
