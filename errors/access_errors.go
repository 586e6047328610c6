// errors/access_errors.go
package errors

import "errors"

// Every authorization stage fails with exactly one of these, wrapped with detail.
var (
	ErrProofMissing      = errors.New("proof missing")
	ErrMalformedProof    = errors.New("malformed proof")
	ErrProofExpired      = errors.New("proof expired")
	ErrChainMismatch     = errors.New("chain mismatch")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrPaymentRequired   = errors.New("payment required")
	ErrOracleUnavailable = errors.New("oracle unavailable")
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownPolicy  = errors.New("unknown policy source")
)
