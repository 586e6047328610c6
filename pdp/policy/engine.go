package policy

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// BalanceOracle is satisfied by *oracle.Oracle.
type BalanceOracle interface {
	GetBalance(ctx context.Context, chainID uint64, contract, owner common.Address, tokenID *big.Int) (*big.Int, error)
}

// Engine maps operations to the token tiers that unlock them. The table is
// fixed at construction.
type Engine struct {
	byOperation map[string][]model.TokenRequirement
	oracle      BalanceOracle
}

func NewEngine(requirements []model.TokenRequirement, oracle BalanceOracle) (*Engine, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: policy engine requires a balance oracle", gate_errors.ErrInvalidConfig)
	}
	byOperation := make(map[string][]model.TokenRequirement)
	for i, r := range requirements {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("%w: requirement %d: %v", gate_errors.ErrInvalidConfig, i, err)
		}
		byOperation[r.Operation] = append(byOperation[r.Operation], r.Clone())
	}
	return &Engine{byOperation: byOperation, oracle: oracle}, nil
}

func validate(r model.TokenRequirement) error {
	switch {
	case r.Operation == "":
		return fmt.Errorf("operation is required")
	case r.TokenID == nil:
		return fmt.Errorf("%s: token id is required", r.Operation)
	case r.TokenID.Sign() < 0 || r.TokenID.Cmp(maxUint256) > 0:
		return fmt.Errorf("%s: token id %s out of uint256 range", r.Operation, r.TokenID)
	case r.MinimumQuantity == 0:
		return fmt.Errorf("%s: minimum quantity must be at least 1", r.Operation)
	}
	return nil
}

func (e *Engine) IsProtected(operation string) bool {
	return len(e.byOperation[operation]) > 0
}

// Requirements returns the tiers for operation in declaration order.
func (e *Engine) Requirements(operation string) []model.TokenRequirement {
	reqs := e.byOperation[operation]
	out := make([]model.TokenRequirement, len(reqs))
	for i, r := range reqs {
		out[i] = r.Clone()
	}
	return out
}

// Operations lists every protected operation, sorted.
func (e *Engine) Operations() []string {
	ops := make([]string, 0, len(e.byOperation))
	for op := range e.byOperation {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Authorize walks the tiers of operation in order and grants on the first
// one signer holds. When nothing is satisfied, PaymentRequired is returned
// only if every tier got a definitive answer; any failed lookup could have
// granted, so the result is OracleUnavailable instead.
func (e *Engine) Authorize(ctx context.Context, operation string, signer common.Address, chainID uint64, contract common.Address) model.VerificationResult {
	reqs := e.byOperation[operation]
	if len(reqs) == 0 {
		return model.Grant(model.StageTierCheck, &signer, nil, nil)
	}

	evaluations := make([]model.TierEvaluation, 0, len(reqs))
	var failures int
	var lastErr error
	for _, r := range reqs {
		// a gone caller must not start lookups nobody will read
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("%w: %w", gate_errors.ErrOracleUnavailable, err)
			result := model.Deny(model.StageTierCheck, err)
			result.Signer = signer.Hex()
			result.Evaluations = evaluations
			return result
		}
		quantity, err := e.oracle.GetBalance(ctx, chainID, contract, signer, r.TokenID)
		if err != nil {
			failures++
			lastErr = err
			evaluations = append(evaluations, model.TierEvaluation{Requirement: r, Error: err.Error()})
			logger.Warn("Tier lookup failed",
				zap.String("operation", operation),
				zap.String("tier", r.Tier),
				zap.String("signer", signer.Hex()),
				zap.Error(err))
			continue
		}
		evaluation := model.TierEvaluation{
			Requirement: r,
			Quantity:    quantity.String(),
			Satisfied:   r.Satisfied(quantity),
		}
		evaluations = append(evaluations, evaluation)
		if evaluation.Satisfied {
			satisfied := r
			return model.Grant(model.StageTierCheck, &signer, &satisfied, evaluations)
		}
	}

	if failures == 0 {
		err := fmt.Errorf("%w: %s holds none of the %d tier(s) for %s",
			gate_errors.ErrPaymentRequired, signer.Hex(), len(reqs), operation)
		return model.DenyWithOptions(model.StageTierCheck, err, &signer, reqs, evaluations)
	}

	err := fmt.Errorf("%w: %d of %d tier lookup(s) failed, last: %v",
		gate_errors.ErrOracleUnavailable, failures, len(reqs), lastErr)
	result := model.Deny(model.StageTierCheck, err)
	result.Signer = signer.Hex()
	result.Evaluations = evaluations
	return result
}
