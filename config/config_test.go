package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
)

const testYAML = `
chain:
  rpcURL: "http://node:8545"
  chainId: 1223953
  contractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
proof:
  maxAge: 45s
policy:
  requirements:
    - operation: premium_analysis
      tier: gold
      tokenId: "1"
      minimumQuantity: 1
    - operation: premium_analysis
      tier: silver
      tokenId: "0x02"
      minimumQuantity: 3
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://node:8545", cfg.Chain.RPCURL)
	assert.Equal(t, uint64(1223953), cfg.Chain.ChainID)
	assert.Equal(t, 45*time.Second, cfg.Proof.MaxAge)
	assert.Equal(t, 5*time.Second, cfg.Proof.ClockSkew)
	assert.Equal(t, 3*time.Second, cfg.Chain.RPCTimeout)
	assert.Equal(t, 30*time.Second, cfg.Oracle.CacheTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, PolicySourceConfig, cfg.Policy.Source)

	reqs, err := cfg.TokenRequirements()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "gold", reqs[0].Tier)
	assert.Equal(t, int64(2), reqs[1].TokenID.Int64())
	assert.Equal(t, uint64(3), reqs[1].MinimumQuantity)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TOKENGATE_CHAIN_CHAINID", "5")
	t.Setenv("TOKENGATE_ORACLE_CACHETTL", "1m")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cfg.Chain.ChainID)
	assert.Equal(t, time.Minute, cfg.Oracle.CacheTTL)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	// no chain configured
	assert.ErrorIs(t, cfg.Validate(), gate_errors.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Configuration {
		cfg, err := Load(writeConfig(t, testYAML))
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]func(*Configuration){
		"bad contract":      func(c *Configuration) { c.Chain.ContractAddress = "0x123" },
		"empty rpc":         func(c *Configuration) { c.Chain.RPCURL = "" },
		"zero max age":      func(c *Configuration) { c.Proof.MaxAge = 0 },
		"negative skew":     func(c *Configuration) { c.Proof.ClockSkew = -time.Second },
		"zero cache size":   func(c *Configuration) { c.Oracle.CacheSize = 0 },
		"bad token id":      func(c *Configuration) { c.Policy.Requirements[0].TokenID = "-1" },
		"zero minimum":      func(c *Configuration) { c.Policy.Requirements[0].MinimumQuantity = 0 },
		"missing op":        func(c *Configuration) { c.Policy.Requirements[0].Operation = "" },
		"neo4j without uri": func(c *Configuration) { c.Policy.Source = PolicySourceNeo4j },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base(t)
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), gate_errors.ErrInvalidConfig)
		})
	}

	cfg := base(t)
	cfg.Policy.Source = "etcd"
	assert.ErrorIs(t, cfg.Validate(), gate_errors.ErrUnknownPolicy)
}
