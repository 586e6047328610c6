package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/metrics"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const (
	DefaultCacheTTL   = 30 * time.Second
	DefaultCacheSize  = 10000
	DefaultRPCTimeout = 3 * time.Second
)

// BalanceFetcher reads a token balance from the chain.
type BalanceFetcher interface {
	BalanceOf(ctx context.Context, contract, owner common.Address, tokenID *big.Int) (*big.Int, error)
}

type Config struct {
	ChainID    uint64
	CacheTTL   time.Duration
	CacheSize  int
	RPCTimeout time.Duration
}

// Oracle answers balance queries from a TTL'd LRU cache, falling through to
// a single RPC per key no matter how many callers are waiting on it.
type Oracle struct {
	fetcher BalanceFetcher
	cache   *lru.Cache
	flights singleflight.Group

	chainID uint64
	ttl     time.Duration
	timeout time.Duration

	// Clock is read for cache freshness only.
	Clock func() time.Time
}

func New(fetcher BalanceFetcher, cfg Config) (*Oracle, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: oracle requires a balance fetcher", gate_errors.ErrInvalidConfig)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.RPCTimeout <= 0 {
		cfg.RPCTimeout = DefaultRPCTimeout
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gate_errors.ErrInvalidConfig, err)
	}
	return &Oracle{
		fetcher: fetcher,
		cache:   cache,
		chainID: cfg.ChainID,
		ttl:     cfg.CacheTTL,
		timeout: cfg.RPCTimeout,
		Clock:   time.Now,
	}, nil
}

// GetBalance returns owner's balance of tokenID. Every failure, including the
// caller giving up, is reported as ErrOracleUnavailable and is never cached.
func (o *Oracle) GetBalance(ctx context.Context, chainID uint64, contract, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	if chainID != o.chainID {
		return nil, fmt.Errorf("%w: no RPC endpoint for chain %d", gate_errors.ErrOracleUnavailable, chainID)
	}
	if tokenID == nil {
		tokenID = new(big.Int)
	}
	key := model.CacheKey{ChainID: chainID, Contract: contract, Owner: owner, TokenID: tokenID}

	if quantity, ok := o.cached(key); ok {
		metrics.CacheHit()
		return quantity, nil
	}
	metrics.CacheMiss()

	flight := o.flights.DoChan(key.String(), func() (interface{}, error) {
		return o.fetch(ctx, key)
	})
	select {
	case res := <-flight:
		if res.Shared {
			metrics.Coalesced()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return new(big.Int).Set(res.Val.(*big.Int)), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", gate_errors.ErrOracleUnavailable, ctx.Err())
	}
}

// Len reports the number of cached entries, fresh or not.
func (o *Oracle) Len() int {
	return o.cache.Len()
}

func (o *Oracle) cached(key model.CacheKey) (*big.Int, bool) {
	value, ok := o.cache.Get(key.String())
	if !ok {
		return nil, false
	}
	entry := value.(model.CacheEntry)
	if !entry.Fresh(o.Clock(), o.ttl) {
		return nil, false
	}
	return new(big.Int).Set(entry.Quantity), true
}

// fetch runs once per flight. It is detached from the initiating caller so
// a cancelled initiator does not fail the other waiters.
func (o *Oracle) fetch(ctx context.Context, key model.CacheKey) (*big.Int, error) {
	if quantity, ok := o.cached(key); ok {
		return quantity, nil
	}

	rpcCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	start := time.Now()
	quantity, err := o.fetcher.BalanceOf(rpcCtx, key.Contract, key.Owner, key.TokenID)
	if err == nil && (quantity == nil || quantity.Sign() < 0) {
		err = fmt.Errorf("malformed balance %v", quantity)
	}
	metrics.ObserveRPC(time.Since(start), err)
	if err != nil {
		logger.Warn("Balance lookup failed",
			zap.String("key", key.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: balanceOf: %v", gate_errors.ErrOracleUnavailable, err)
	}

	o.cache.Add(key.String(), model.CacheEntry{
		Quantity:  new(big.Int).Set(quantity),
		FetchedAt: o.Clock(),
	})
	logger.Debug("Balance cached", zap.String("key", key.String()), zap.String("quantity", quantity.String()))
	return quantity, nil
}
