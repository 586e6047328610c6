package model

import (
	"github.com/ethereum/go-ethereum/common"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
)

type Decision string

const (
	DecisionGranted Decision = "GRANTED"
	DecisionDenied  Decision = "DENIED"
)

// Stage names the pipeline state that produced a decision.
type Stage string

const (
	StageParsing        Stage = "Parsing"
	StageFreshnessCheck Stage = "FreshnessCheck"
	StageChainCheck     Stage = "ChainCheck"
	StageSignatureCheck Stage = "SignatureCheck"
	StageTierCheck      Stage = "TierCheck"
)

// VerificationResult is the terminal output of an authorization. Build it
// with Grant or Deny; a result is either granted or denied, never both.
type VerificationResult struct {
	DecisionID           string             `json:"decision_id,omitempty"`
	Decision             Decision           `json:"decision"`
	Stage                Stage              `json:"stage"`
	Operation            string             `json:"operation,omitempty"`
	Signer               string             `json:"signer,omitempty"`
	SatisfiedRequirement *TokenRequirement  `json:"satisfied_requirement,omitempty"`
	Code                 gate_errors.Code   `json:"code,omitempty"`
	Detail               string             `json:"detail,omitempty"`
	Remediation          string             `json:"remediation,omitempty"`
	Retryable            bool               `json:"retryable,omitempty"`
	Requirements         []TokenRequirement `json:"requirements,omitempty"`
	Evaluations          []TierEvaluation   `json:"evaluations,omitempty"`
}

// Grant builds a granted result. requirement is nil for unprotected operations.
func Grant(stage Stage, signer *common.Address, requirement *TokenRequirement, evaluations []TierEvaluation) VerificationResult {
	result := VerificationResult{
		Decision:    DecisionGranted,
		Stage:       stage,
		Evaluations: cloneEvaluations(evaluations),
	}
	if signer != nil {
		result.Signer = signer.Hex()
	}
	if requirement != nil {
		satisfied := requirement.Clone()
		result.SatisfiedRequirement = &satisfied
	}
	return result
}

// Deny builds a denied result from a stage error.
func Deny(stage Stage, err error) VerificationResult {
	class := gate_errors.Classify(err)
	result := VerificationResult{
		Decision:    DecisionDenied,
		Stage:       stage,
		Code:        class.Code,
		Remediation: class.Remediation,
		Retryable:   class.Retryable,
	}
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}

// DenyWithOptions is Deny carrying the requirement tiers a caller may
// satisfy, and what was learned about each.
func DenyWithOptions(stage Stage, err error, signer *common.Address, requirements []TokenRequirement, evaluations []TierEvaluation) VerificationResult {
	result := Deny(stage, err)
	if signer != nil {
		result.Signer = signer.Hex()
	}
	result.Requirements = make([]TokenRequirement, 0, len(requirements))
	for _, r := range requirements {
		result.Requirements = append(result.Requirements, r.Clone())
	}
	result.Evaluations = cloneEvaluations(evaluations)
	return result
}

// Granted reports whether access was granted.
func (r VerificationResult) Granted() bool {
	return r.Decision == DecisionGranted
}

// Identified returns a copy stamped with the decision id and operation.
func (r VerificationResult) Identified(decisionID, operation string) VerificationResult {
	r.DecisionID = decisionID
	r.Operation = operation
	return r
}

func cloneEvaluations(in []TierEvaluation) []TierEvaluation {
	if len(in) == 0 {
		return nil
	}
	out := make([]TierEvaluation, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Requirement = e.Requirement.Clone()
	}
	return out
}
