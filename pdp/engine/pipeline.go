package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/pdp/codec"
	"github.com/dev-mohitbeniwal/tokengate/pdp/guard"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
	"github.com/dev-mohitbeniwal/tokengate/pdp/policy"
	"github.com/dev-mohitbeniwal/tokengate/pdp/signature"
)

// Pipeline runs one proof through Parsing, FreshnessCheck, ChainCheck,
// SignatureCheck and TierCheck, stopping at the first stage that denies.
// Apart from the oracle it holds no mutable state, so one Pipeline serves
// any number of concurrent calls.
type Pipeline struct {
	freshness *guard.Freshness
	chain     *guard.ChainIdentity
	verifier  *signature.Verifier
	policy    *policy.Engine

	Clock func() time.Time
	NewID func() string
}

func NewPipeline(freshness *guard.Freshness, chain *guard.ChainIdentity, verifier *signature.Verifier, engine *policy.Engine) *Pipeline {
	return &Pipeline{
		freshness: freshness,
		chain:     chain,
		verifier:  verifier,
		policy:    engine,
		Clock:     time.Now,
		NewID:     func() string { return uuid.New().String() },
	}
}

// decision is the per-call state; it is never shared or reused.
type decision struct {
	operation string
	raw       json.RawMessage
	stage     model.Stage
	proof     model.Proof
	signer    common.Address
	result    *model.VerificationResult
}

func (d *decision) deny(err error) {
	result := model.Deny(d.stage, err)
	d.result = &result
}

// Authorize decides whether the holder of raw may invoke operation. It never
// panics and never returns an error: every outcome is a VerificationResult.
func (p *Pipeline) Authorize(ctx context.Context, operation string, raw json.RawMessage, reqCtx model.RequestContext) (result model.VerificationResult) {
	decisionID := p.NewID()
	d := &decision{operation: operation, raw: raw, stage: model.StageParsing}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic while authorizing",
				zap.String("decision_id", decisionID),
				zap.String("operation", operation),
				zap.String("stage", string(d.stage)),
				zap.Any("panic", r))
			result = model.Deny(d.stage, fmt.Errorf("%w: proof could not be evaluated", gate_errors.ErrMalformedProof)).
				Identified(decisionID, operation)
		}
	}()

	if codec.IsAbsent(raw) {
		if p.policy.IsProtected(operation) {
			d.deny(fmt.Errorf("%w: %s requires a token ownership proof", gate_errors.ErrProofMissing, operation))
		} else {
			granted := model.Grant(model.StageParsing, nil, nil, nil)
			d.result = &granted
		}
	}
	for d.result == nil {
		p.step(ctx, d)
	}

	result = d.result.Identified(decisionID, operation)
	logger.Debug("Authorization decided",
		zap.String("decision_id", decisionID),
		zap.String("request_id", reqCtx.RequestID),
		zap.String("operation", operation),
		zap.String("decision", string(result.Decision)),
		zap.String("stage", string(result.Stage)),
		zap.String("code", string(result.Code)))
	return result
}

func (p *Pipeline) step(ctx context.Context, d *decision) {
	switch d.stage {
	case model.StageParsing:
		proof, err := codec.Parse(d.raw)
		if err != nil {
			d.deny(err)
			return
		}
		d.proof = proof
		d.stage = model.StageFreshnessCheck

	case model.StageFreshnessCheck:
		if err := p.freshness.Check(d.proof, p.Clock()); err != nil {
			d.deny(err)
			return
		}
		d.stage = model.StageChainCheck

	case model.StageChainCheck:
		if err := p.chain.Check(d.proof); err != nil {
			d.deny(err)
			return
		}
		d.stage = model.StageSignatureCheck

	case model.StageSignatureCheck:
		signer, err := p.verifier.Verify(d.proof)
		if err != nil {
			d.deny(err)
			return
		}
		if d.proof.Signer != nil && *d.proof.Signer != signer {
			d.deny(fmt.Errorf("%w: proof declares signer %s but was signed by %s",
				gate_errors.ErrInvalidSignature, d.proof.Signer.Hex(), signer.Hex()))
			return
		}
		d.signer = signer
		d.stage = model.StageTierCheck

	case model.StageTierCheck:
		result := p.policy.Authorize(ctx, d.operation, d.signer, d.proof.ChainID, d.proof.ContractAddress)
		d.result = &result

	default:
		panic(fmt.Sprintf("unknown stage %q", d.stage))
	}
}

// Requirements exposes the tiers for operation so callers can present
// purchase options before signing.
func (p *Pipeline) Requirements(operation string) []model.TokenRequirement {
	return p.policy.Requirements(operation)
}
