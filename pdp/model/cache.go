package model

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type CacheKey struct {
	ChainID  uint64
	Contract common.Address
	Owner    common.Address
	TokenID  *big.Int
}

// String is the canonical, lowercase form used for cache and flight lookups.
func (k CacheKey) String() string {
	tokenID := "0"
	if k.TokenID != nil {
		tokenID = k.TokenID.String()
	}
	return fmt.Sprintf("%d:%s:%s:%s",
		k.ChainID,
		strings.ToLower(k.Contract.Hex()),
		strings.ToLower(k.Owner.Hex()),
		tokenID)
}

type CacheEntry struct {
	Quantity  *big.Int
	FetchedAt time.Time
}

// Fresh reports whether the entry may still be served at now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
