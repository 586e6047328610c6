package engine

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/guard"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
	"github.com/dev-mohitbeniwal/tokengate/pdp/oracle"
	"github.com/dev-mohitbeniwal/tokengate/pdp/policy"
	"github.com/dev-mohitbeniwal/tokengate/pdp/signature"
)

const (
	deploymentChain = 1223953
	protectedOp     = "premium_analysis"
)

var (
	deploymentContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	fixedNow           = time.Unix(1_700_000_000, 0)
)

type chainFetcher struct {
	calls   atomic.Int32
	down    atomic.Bool
	balance atomic.Int64
}

func (f *chainFetcher) BalanceOf(ctx context.Context, contract, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	f.calls.Add(1)
	if f.down.Load() {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return big.NewInt(f.balance.Load()), nil
}

type harness struct {
	pipeline *Pipeline
	fetcher  *chainFetcher
	key      *ecdsa.PrivateKey
	signer   common.Address
}

func newHarness(t *testing.T, balance int64) *harness {
	t.Helper()
	fetcher := &chainFetcher{}
	fetcher.balance.Store(balance)

	o, err := oracle.New(fetcher, oracle.Config{
		ChainID:    deploymentChain,
		CacheTTL:   time.Minute,
		RPCTimeout: 30 * time.Millisecond,
	})
	require.NoError(t, err)
	o.Clock = func() time.Time { return fixedNow }

	engine, err := policy.NewEngine([]model.TokenRequirement{
		{Operation: protectedOp, Tier: "gold", TokenID: big.NewInt(1), MinimumQuantity: 1},
	}, o)
	require.NoError(t, err)

	p := NewPipeline(
		guard.NewFreshness(30*time.Second, 5*time.Second),
		guard.NewChainIdentity(deploymentChain, deploymentContract),
		signature.NewVerifier(),
		engine,
	)
	p.Clock = func() time.Time { return fixedNow }

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &harness{pipeline: p, fetcher: fetcher, key: key, signer: crypto.PubkeyToAddress(key.PublicKey)}
}

type proofOption func(*model.Proof)

func withTimestamp(ts int64) proofOption { return func(p *model.Proof) { p.TimestampSeconds = ts } }
func withChain(id uint64) proofOption    { return func(p *model.Proof) { p.ChainID = id } }

// proof signs a fresh proof and renders it in wire form.
func (h *harness) proof(t *testing.T, opts ...proofOption) json.RawMessage {
	t.Helper()
	p := model.Proof{
		TimestampSeconds: fixedNow.Unix(),
		Nonce:            "b7f3c1",
		ChainID:          deploymentChain,
		ContractAddress:  deploymentContract,
		TokenID:          big.NewInt(1),
	}
	for _, opt := range opts {
		opt(&p)
	}
	require.NoError(t, signature.Sign(&p, h.key))
	return wire(t, p, nil)
}

func wire(t *testing.T, p model.Proof, declaredSigner *common.Address) json.RawMessage {
	t.Helper()
	fields := map[string]interface{}{
		"signature":       hexutil.Encode(p.Signature[:]),
		"nonce":           p.Nonce,
		"timestamp":       p.TimestampSeconds,
		"chainId":         p.ChainID,
		"contractAddress": p.ContractAddress.Hex(),
		"tokenId":         p.TokenID.String(),
	}
	if declaredSigner != nil {
		fields["signer"] = declaredSigner.Hex()
	}
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func authorize(h *harness, raw json.RawMessage) model.VerificationResult {
	return h.pipeline.Authorize(context.Background(), protectedOp, raw, model.RequestContext{RequestID: "req-1"})
}

func TestScenarioA_NoTokensIsPaymentRequired(t *testing.T) {
	h := newHarness(t, 0)

	result := authorize(h, h.proof(t))
	assert.False(t, result.Granted())
	assert.Equal(t, gate_errors.CodePaymentRequired, result.Code)
	assert.Equal(t, model.StageTierCheck, result.Stage)
	require.Len(t, result.Requirements, 1)
	assert.Equal(t, int64(1), result.Requirements[0].TokenID.Int64())
	assert.Equal(t, h.signer.Hex(), result.Signer)
}

func TestScenarioB_StaleProofMakesNoRPC(t *testing.T) {
	h := newHarness(t, 5)

	result := authorize(h, h.proof(t, withTimestamp(fixedNow.Unix()-31)))
	assert.Equal(t, gate_errors.CodeProofExpired, result.Code)
	assert.Equal(t, model.StageFreshnessCheck, result.Stage)
	assert.Equal(t, int32(0), h.fetcher.calls.Load())
}

func TestScenarioC_WrongChainIsChainMismatch(t *testing.T) {
	h := newHarness(t, 5)

	result := authorize(h, h.proof(t, withChain(999)))
	assert.Equal(t, gate_errors.CodeChainMismatch, result.Code)
	assert.Equal(t, model.StageChainCheck, result.Stage)
	assert.Equal(t, int32(0), h.fetcher.calls.Load())
}

func TestScenarioD_HolderIsGranted(t *testing.T) {
	h := newHarness(t, 5)

	result := authorize(h, h.proof(t))
	require.True(t, result.Granted())
	assert.Equal(t, h.signer.Hex(), result.Signer)
	assert.Equal(t, "gold", result.SatisfiedRequirement.Tier)
	assert.NotEmpty(t, result.DecisionID)
	assert.Equal(t, protectedOp, result.Operation)
}

func TestScenarioE_TimeoutThenRecovery(t *testing.T) {
	h := newHarness(t, 5)
	h.fetcher.down.Store(true)

	result := authorize(h, h.proof(t))
	assert.Equal(t, gate_errors.CodeOracleUnavailable, result.Code)
	assert.True(t, result.Retryable)

	h.fetcher.down.Store(false)
	result = authorize(h, h.proof(t))
	require.True(t, result.Granted())

	// cached: no further RPC
	result = authorize(h, h.proof(t))
	require.True(t, result.Granted())
	assert.Equal(t, int32(2), h.fetcher.calls.Load())
}

func TestRepeatedProofIsIdempotent(t *testing.T) {
	h := newHarness(t, 5)
	raw := h.proof(t)

	first := authorize(h, raw)
	second := authorize(h, raw)
	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Signer, second.Signer)
	assert.NotEqual(t, first.DecisionID, second.DecisionID)
	assert.Equal(t, int32(1), h.fetcher.calls.Load())
}

func TestConcurrentAuthorizationsShareOneRPC(t *testing.T) {
	h := newHarness(t, 5)
	raw := h.proof(t)

	var wg sync.WaitGroup
	granted := atomic.Int32{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if authorize(h, raw).Granted() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(20), granted.Load())
	assert.Equal(t, int32(1), h.fetcher.calls.Load())
}

func TestExpiredBeatsBadSignature(t *testing.T) {
	h := newHarness(t, 5)
	p := model.Proof{
		TimestampSeconds: fixedNow.Unix() - 3600,
		Nonce:            "n",
		ChainID:          deploymentChain,
		ContractAddress:  deploymentContract,
		TokenID:          big.NewInt(1),
	}
	p.Signature[64] = 27
	p.Signature[0] = 1

	result := authorize(h, wire(t, p, nil))
	assert.Equal(t, gate_errors.CodeProofExpired, result.Code)
}

func TestMissingProof(t *testing.T) {
	h := newHarness(t, 5)

	for _, raw := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("null"), json.RawMessage("  ")} {
		result := authorize(h, raw)
		assert.Equal(t, gate_errors.CodeProofMissing, result.Code)
		assert.Equal(t, model.StageParsing, result.Stage)
	}

	result := h.pipeline.Authorize(context.Background(), "echo", nil, model.RequestContext{})
	assert.True(t, result.Granted())
	assert.Equal(t, int32(0), h.fetcher.calls.Load())
}

func TestProofOnUnprotectedOperationIsStillChecked(t *testing.T) {
	h := newHarness(t, 0)

	result := h.pipeline.Authorize(context.Background(), "echo", json.RawMessage(`{"nonce":"x"}`), model.RequestContext{})
	assert.Equal(t, gate_errors.CodeMalformedProof, result.Code)

	result = h.pipeline.Authorize(context.Background(), "echo", h.proof(t), model.RequestContext{})
	assert.True(t, result.Granted())
	assert.Nil(t, result.SatisfiedRequirement)
	assert.Equal(t, int32(0), h.fetcher.calls.Load())
}

func TestDeclaredSignerMustMatch(t *testing.T) {
	h := newHarness(t, 5)
	p := model.Proof{
		TimestampSeconds: fixedNow.Unix(),
		Nonce:            "n",
		ChainID:          deploymentChain,
		ContractAddress:  deploymentContract,
		TokenID:          big.NewInt(1),
	}
	require.NoError(t, signature.Sign(&p, h.key))

	result := authorize(h, wire(t, p, &h.signer))
	assert.True(t, result.Granted())

	impostor := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	result = authorize(h, wire(t, p, &impostor))
	assert.Equal(t, gate_errors.CodeInvalidSignature, result.Code)
	assert.Equal(t, model.StageSignatureCheck, result.Stage)
}

func TestMalformedProof(t *testing.T) {
	h := newHarness(t, 5)

	for _, raw := range []string{`[]`, `"proof"`, `{"signature":"0x00"}`, `{`} {
		result := authorize(h, json.RawMessage(raw))
		assert.Equal(t, gate_errors.CodeMalformedProof, result.Code, raw)
		assert.Equal(t, model.StageParsing, result.Stage, raw)
	}
}

func TestPanicIsRecoveredAsMalformed(t *testing.T) {
	h := newHarness(t, 5)
	broken := NewPipeline(nil, guard.NewChainIdentity(deploymentChain, deploymentContract), signature.NewVerifier(), h.pipeline.policy)

	var result model.VerificationResult
	assert.NotPanics(t, func() {
		result = broken.Authorize(context.Background(), protectedOp, h.proof(t), model.RequestContext{})
	})
	assert.False(t, result.Granted())
	assert.Equal(t, gate_errors.CodeMalformedProof, result.Code)
	assert.Equal(t, model.StageFreshnessCheck, result.Stage)
	assert.NotEmpty(t, result.DecisionID)
}

func TestRequirementsPassThrough(t *testing.T) {
	h := newHarness(t, 5)
	reqs := h.pipeline.Requirements(protectedOp)
	require.Len(t, reqs, 1)
	assert.Equal(t, "gold", reqs[0].Tier)
	assert.Empty(t, h.pipeline.Requirements("echo"))
}
