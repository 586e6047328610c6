// errors/classifier.go
package errors

import (
	"errors"
	"net/http"
)

// Code is the stable, machine-actionable identifier of a denial.
type Code string

const (
	CodeProofMissing      Code = "ProofMissing"
	CodeMalformedProof    Code = "MalformedProof"
	CodeProofExpired      Code = "ProofExpired"
	CodeChainMismatch     Code = "ChainMismatch"
	CodeInvalidSignature  Code = "InvalidSignature"
	CodePaymentRequired   Code = "PaymentRequired"
	CodeOracleUnavailable Code = "OracleUnavailable"
)

// Classification is what a client needs to self-remediate.
type Classification struct {
	Code        Code   `json:"code"`
	HTTPStatus  int    `json:"-"`
	Remediation string `json:"remediation"`
	Retryable   bool   `json:"retryable"`
}

var classifications = []struct {
	sentinel error
	class    Classification
}{
	{ErrProofMissing, Classification{
		Code:        CodeProofMissing,
		HTTPStatus:  http.StatusUnauthorized,
		Remediation: "obtain an ownership proof and resubmit it with the call",
	}},
	{ErrMalformedProof, Classification{
		Code:        CodeMalformedProof,
		HTTPStatus:  http.StatusBadRequest,
		Remediation: "regenerate the proof with every required field correctly encoded",
	}},
	{ErrProofExpired, Classification{
		Code:        CodeProofExpired,
		HTTPStatus:  http.StatusUnauthorized,
		Remediation: "sign a fresh proof with the current timestamp",
	}},
	{ErrChainMismatch, Classification{
		Code:        CodeChainMismatch,
		HTTPStatus:  http.StatusConflict,
		Remediation: "sign the proof for the chain id and contract this deployment serves",
	}},
	{ErrInvalidSignature, Classification{
		Code:        CodeInvalidSignature,
		HTTPStatus:  http.StatusUnauthorized,
		Remediation: "re-sign the proof digest with the wallet that holds the token",
	}},
	{ErrPaymentRequired, Classification{
		Code:        CodePaymentRequired,
		HTTPStatus:  http.StatusPaymentRequired,
		Remediation: "acquire one of the listed tokens, then retry",
	}},
	{ErrOracleUnavailable, Classification{
		Code:        CodeOracleUnavailable,
		HTTPStatus:  http.StatusServiceUnavailable,
		Remediation: "transient balance lookup failure, retry the whole authorization",
		Retryable:   true,
	}},
}

// Classify maps a stage error onto its stable code. Errors that carry no
// known sentinel are treated as malformed input.
func Classify(err error) Classification {
	for _, c := range classifications {
		if errors.Is(err, c.sentinel) {
			return c.class
		}
	}
	return Lookup(CodeMalformedProof)
}

// Lookup returns the classification for a code.
func Lookup(code Code) Classification {
	for _, c := range classifications {
		if c.class.Code == code {
			return c.class
		}
	}
	return Classification{Code: code, HTTPStatus: http.StatusForbidden}
}
