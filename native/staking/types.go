package staking

import (
	"fmt"
	"math/big"
)

const (
	// PlanCount is the fixed number of lock plans defined at construction.
	PlanCount = 4
	// BpsDenominator converts basis points into a fraction of principal.
	BpsDenominator = 10_000
)

// Plan is an immutable lock definition. The four plans are supplied when the
// engine is constructed and never change afterwards.
type Plan struct {
	ID            uint8
	LockDuration  uint64 // seconds
	RewardRateBps uint32
}

// Reward returns the full-term reward promised for the given principal,
// floor(principal * bps / 10000). The result is always a fresh big.Int.
func (p Plan) Reward(principal *big.Int) *big.Int {
	if principal == nil || principal.Sign() <= 0 {
		return big.NewInt(0)
	}
	reward := new(big.Int).Mul(principal, new(big.Int).SetUint64(uint64(p.RewardRateBps)))
	return reward.Quo(reward, big.NewInt(BpsDenominator))
}

// Position captures a single stake event. Positions are append-only per
// owner; claiming flips Claimed exactly once and nothing is ever deleted, so
// indices stay stable for the lifetime of the ledger.
type Position struct {
	Principal *big.Int
	StartTime uint64
	PlanID    uint8
	Claimed   bool
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Principal != nil {
		clone.Principal = new(big.Int).Set(p.Principal)
	} else {
		clone.Principal = big.NewInt(0)
	}
	return &clone
}

// Ledger carries the global counters shared by every operation. TotalStaked
// always equals the principal sum of unclaimed positions; RewardPool is the
// unencumbered reward liquidity after stake-time reservations.
type Ledger struct {
	TotalStaked       *big.Int
	RewardPool        *big.Int
	TotalUsers        uint64
	TotalPositions    uint64
	RefundMode        bool
	RefundActivatedAt uint64
}

// NewLedger returns an empty ledger with non-nil amounts.
func NewLedger() *Ledger {
	return &Ledger{TotalStaked: big.NewInt(0), RewardPool: big.NewInt(0)}
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return NewLedger()
	}
	clone := *l
	clone.TotalStaked = big.NewInt(0)
	clone.RewardPool = big.NewInt(0)
	if l.TotalStaked != nil {
		clone.TotalStaked = new(big.Int).Set(l.TotalStaked)
	}
	if l.RewardPool != nil {
		clone.RewardPool = new(big.Int).Set(l.RewardPool)
	}
	return &clone
}

// Normalize ensures the amount fields are non-nil so arithmetic never has to
// nil-check a loaded ledger.
func (l *Ledger) Normalize() *Ledger {
	if l.TotalStaked == nil {
		l.TotalStaked = big.NewInt(0)
	}
	if l.RewardPool == nil {
		l.RewardPool = big.NewInt(0)
	}
	return l
}

// SanitizePlans validates a plan table supplied at engine construction.
// Exactly PlanCount plans are required, IDs must match their slot and reward
// rates may not exceed 100%.
func SanitizePlans(plans []Plan) ([PlanCount]Plan, error) {
	var table [PlanCount]Plan
	if len(plans) != PlanCount {
		return table, fmt.Errorf("staking: expected %d plans, got %d", PlanCount, len(plans))
	}
	for i, plan := range plans {
		if plan.ID != uint8(i) {
			return table, fmt.Errorf("staking: plan %d carries id %d", i, plan.ID)
		}
		if plan.RewardRateBps > BpsDenominator {
			return table, fmt.Errorf("staking: plan %d reward rate %d exceeds %d bps", i, plan.RewardRateBps, BpsDenominator)
		}
		table[i] = plan
	}
	return table, nil
}
