package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const (
	PolicySourceConfig = "config"
	PolicySourceNeo4j  = "neo4j"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Chain         ChainConfiguration
	Proof         ProofConfiguration
	Oracle        OracleConfiguration
	Policy        PolicyConfiguration
	Neo4j         DatabaseConfiguration
	Redis         RedisConfiguration
	RateLimit     RateLimitConfiguration `mapstructure:"rateLimit"`
	Elasticsearch ElasticsearchConfiguration
	Log           LogConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// ChainConfiguration identifies the one chain and contract this deployment serves
type ChainConfiguration struct {
	RPCURL          string        `mapstructure:"rpcURL"`
	ChainID         uint64        `mapstructure:"chainId"`
	ContractAddress string        `mapstructure:"contractAddress"`
	RPCTimeout      time.Duration `mapstructure:"rpcTimeout"`
}

// ProofConfiguration bounds proof timestamps
type ProofConfiguration struct {
	MaxAge    time.Duration `mapstructure:"maxAge"`
	ClockSkew time.Duration `mapstructure:"clockSkew"`
}

// OracleConfiguration sizes the balance cache
type OracleConfiguration struct {
	CacheTTL  time.Duration `mapstructure:"cacheTTL"`
	CacheSize int           `mapstructure:"cacheSize"`
}

// PolicyConfiguration says where the requirement table comes from
type PolicyConfiguration struct {
	Source       string
	Requirements []RequirementConfiguration
}

// RequirementConfiguration is one tier of one operation. TokenID is a
// decimal or 0x-hex string so that uint256 ids survive yaml and env decoding.
type RequirementConfiguration struct {
	Operation       string
	Tier            string
	TokenID         string `mapstructure:"tokenId"`
	MinimumQuantity uint64 `mapstructure:"minimumQuantity"`
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfiguration struct {
	Requests int
	Per      time.Duration
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL   string
	Index string
}

type LogConfiguration struct {
	Dir string
}

var config *Configuration

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("chain.rpcURL", "http://localhost:8545")
	v.SetDefault("chain.chainId", 0)
	v.SetDefault("chain.contractAddress", "")
	v.SetDefault("chain.rpcTimeout", "3s")
	v.SetDefault("proof.maxAge", "30s")
	v.SetDefault("proof.clockSkew", "5s")
	v.SetDefault("oracle.cacheTTL", "30s")
	v.SetDefault("oracle.cacheSize", 10000)
	v.SetDefault("policy.source", PolicySourceConfig)
	v.SetDefault("policy.requirements", []map[string]interface{}{})
	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rateLimit.requests", 120)
	v.SetDefault("rateLimit.per", "1m")
	v.SetDefault("elasticsearch.url", "")
	v.SetDefault("elasticsearch.index", "tokengate-decisions")
	v.SetDefault("log.dir", "logs")
}

func load(v *viper.Viper, path string) (*Configuration, error) {
	v.AddConfigPath(path)     // path to look for the config file in
	v.SetConfigName("config") // name of the config file (without extension)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TOKENGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("No config file found. Using default settings and environment variables.", zap.String("path", path))
		} else {
			return nil, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads config.yaml from path into a fresh viper instance.
func Load(path string) (*Configuration, error) {
	return load(viper.New(), path)
}

// InitConfig loads the process-wide configuration used by GetConfig and the
// Get* accessors.
func InitConfig(path string) error {
	cfg, err := load(viper.GetViper(), path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config = cfg
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Validate rejects configurations the service cannot start with.
func (c *Configuration) Validate() error {
	switch {
	case c.Chain.ChainID == 0:
		return fmt.Errorf("%w: chain.chainId is required", gate_errors.ErrInvalidConfig)
	case !common.IsHexAddress(c.Chain.ContractAddress):
		return fmt.Errorf("%w: chain.contractAddress %q is not an address", gate_errors.ErrInvalidConfig, c.Chain.ContractAddress)
	case c.Chain.RPCURL == "":
		return fmt.Errorf("%w: chain.rpcURL is required", gate_errors.ErrInvalidConfig)
	case c.Chain.RPCTimeout <= 0:
		return fmt.Errorf("%w: chain.rpcTimeout must be positive", gate_errors.ErrInvalidConfig)
	case c.Proof.MaxAge <= 0:
		return fmt.Errorf("%w: proof.maxAge must be positive", gate_errors.ErrInvalidConfig)
	case c.Proof.ClockSkew < 0:
		return fmt.Errorf("%w: proof.clockSkew must not be negative", gate_errors.ErrInvalidConfig)
	case c.Oracle.CacheTTL <= 0:
		return fmt.Errorf("%w: oracle.cacheTTL must be positive", gate_errors.ErrInvalidConfig)
	case c.Oracle.CacheSize <= 0:
		return fmt.Errorf("%w: oracle.cacheSize must be positive", gate_errors.ErrInvalidConfig)
	case c.RateLimit.Requests < 0 || (c.RateLimit.Requests > 0 && c.RateLimit.Per <= 0):
		return fmt.Errorf("%w: rateLimit needs a positive window", gate_errors.ErrInvalidConfig)
	}

	switch c.Policy.Source {
	case PolicySourceConfig:
		if _, err := c.TokenRequirements(); err != nil {
			return err
		}
	case PolicySourceNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("%w: policy.source neo4j needs neo4j.uri", gate_errors.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", gate_errors.ErrUnknownPolicy, c.Policy.Source)
	}
	return nil
}

// ContractAddress returns the configured contract as an address.
func (c *Configuration) ContractAddress() common.Address {
	return common.HexToAddress(c.Chain.ContractAddress)
}

// TokenRequirements converts policy.requirements into the model, keeping
// declaration order.
func (c *Configuration) TokenRequirements() ([]model.TokenRequirement, error) {
	out := make([]model.TokenRequirement, 0, len(c.Policy.Requirements))
	for i, r := range c.Policy.Requirements {
		if r.Operation == "" {
			return nil, fmt.Errorf("%w: policy.requirements[%d].operation is required", gate_errors.ErrInvalidConfig, i)
		}
		tokenID, ok := model.ParseTokenID(r.TokenID)
		if !ok {
			return nil, fmt.Errorf("%w: policy.requirements[%d].tokenId %q is not a uint256", gate_errors.ErrInvalidConfig, i, r.TokenID)
		}
		if r.MinimumQuantity == 0 {
			return nil, fmt.Errorf("%w: policy.requirements[%d].minimumQuantity must be at least 1", gate_errors.ErrInvalidConfig, i)
		}
		out = append(out, model.TokenRequirement{
			Operation:       r.Operation,
			Tier:            r.Tier,
			TokenID:         tokenID,
			MinimumQuantity: r.MinimumQuantity,
		})
	}
	return out, nil
}
