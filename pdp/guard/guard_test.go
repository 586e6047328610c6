package guard

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

func TestFreshnessWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := NewFreshness(30*time.Second, 5*time.Second)

	cases := []struct {
		name    string
		offset  int64
		expired bool
	}{
		{"now", 0, false},
		{"at max age", -30, false},
		{"one past max age", -31, true},
		{"within skew", 5, false},
		{"beyond skew", 6, true},
		{"far future", 3600, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.Check(model.Proof{TimestampSeconds: now.Unix() + tc.offset}, now)
			if tc.expired {
				assert.ErrorIs(t, err, gate_errors.ErrProofExpired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFreshnessDefaults(t *testing.T) {
	f := NewFreshness(0, -1)
	assert.Equal(t, DefaultMaxAge, f.MaxAge)
	assert.Equal(t, time.Duration(0), f.ClockSkew)
}

func TestChainIdentity(t *testing.T) {
	contract := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	g := NewChainIdentity(1223953, contract)

	assert.NoError(t, g.Check(model.Proof{ChainID: 1223953, ContractAddress: contract}))

	err := g.Check(model.Proof{ChainID: 999, ContractAddress: contract})
	assert.ErrorIs(t, err, gate_errors.ErrChainMismatch)

	other := common.HexToAddress("0x0000000000000000000000000000000000000001")
	err = g.Check(model.Proof{ChainID: 1223953, ContractAddress: other})
	assert.ErrorIs(t, err, gate_errors.ErrChainMismatch)
}
