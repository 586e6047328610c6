package guard

import (
	"fmt"
	"time"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const (
	DefaultMaxAge    = 30 * time.Second
	DefaultClockSkew = 5 * time.Second
)

// Freshness bounds how old, or how far in the future, a proof timestamp may be.
type Freshness struct {
	MaxAge    time.Duration
	ClockSkew time.Duration
}

func NewFreshness(maxAge, clockSkew time.Duration) *Freshness {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Freshness{MaxAge: maxAge, ClockSkew: clockSkew}
}

// Check accepts a proof when -ClockSkew <= now - timestamp <= MaxAge.
func (f *Freshness) Check(proof model.Proof, now time.Time) error {
	age := now.Unix() - proof.TimestampSeconds
	maxAge := int64(f.MaxAge / time.Second)
	skew := int64(f.ClockSkew / time.Second)
	if age > maxAge {
		return fmt.Errorf("%w: proof is %ds old, limit is %ds", gate_errors.ErrProofExpired, age, maxAge)
	}
	if age < -skew {
		return fmt.Errorf("%w: proof timestamp is %ds in the future", gate_errors.ErrProofExpired, -age)
	}
	return nil
}
