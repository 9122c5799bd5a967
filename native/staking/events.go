package staking

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"stakevault/core/types"
)

const (
	EventTypePositionOpened   = "staking.position.opened"
	EventTypePositionClaimed  = "staking.position.claimed"
	EventTypeRewardsDeposited = "staking.rewards.deposited"
	EventTypeRewardsWithdrawn = "staking.rewards.withdrawn"
	EventTypeRefundActivated  = "staking.refund.activated"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// NewPositionOpenedEvent returns the canonical payload emitted when a stake
// is admitted and its reward reservation debited from the pool.
func NewPositionOpenedEvent(owner [20]byte, index uint64, pos *Position, reserved *big.Int) *types.Event {
	attrs := map[string]string{
		"owner": hex.EncodeToString(owner[:]),
		"index": strconv.FormatUint(index, 10),
	}
	if pos != nil {
		attrs["principal"] = formatAmount(pos.Principal)
		attrs["planId"] = strconv.FormatUint(uint64(pos.PlanID), 10)
		attrs["startTime"] = strconv.FormatUint(pos.StartTime, 10)
	}
	attrs["reserved"] = formatAmount(reserved)
	return &types.Event{Type: EventTypePositionOpened, Attributes: attrs}
}

// NewPositionClaimedEvent returns the canonical payload for a resolved
// position, covering both the normal and the refund-mode branch.
func NewPositionClaimedEvent(owner [20]byte, index uint64, pos *Position, reward, released *big.Int, refundMode bool) *types.Event {
	attrs := map[string]string{
		"owner":      hex.EncodeToString(owner[:]),
		"index":      strconv.FormatUint(index, 10),
		"reward":     formatAmount(reward),
		"refundMode": strconv.FormatBool(refundMode),
	}
	if pos != nil {
		attrs["principal"] = formatAmount(pos.Principal)
		attrs["planId"] = strconv.FormatUint(uint64(pos.PlanID), 10)
	}
	if released != nil && released.Sign() > 0 {
		attrs["poolReleased"] = released.String()
	}
	return &types.Event{Type: EventTypePositionClaimed, Attributes: attrs}
}

// NewRewardsDepositedEvent returns the payload for a pool top-up.
func NewRewardsDepositedEvent(from [20]byte, amount, pool *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardsDeposited, Attributes: map[string]string{
		"from":   hex.EncodeToString(from[:]),
		"amount": formatAmount(amount),
		"pool":   formatAmount(pool),
	}}
}

// NewRewardsWithdrawnEvent returns the payload for a pool drain.
func NewRewardsWithdrawnEvent(to [20]byte, amount, pool *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardsWithdrawn, Attributes: map[string]string{
		"to":     hex.EncodeToString(to[:]),
		"amount": formatAmount(amount),
		"pool":   formatAmount(pool),
	}}
}

// NewRefundActivatedEvent returns the payload for the one-way refund switch.
func NewRefundActivatedEvent(activatedAt uint64) *types.Event {
	return &types.Event{Type: EventTypeRefundActivated, Attributes: map[string]string{
		"activatedAt": strconv.FormatUint(activatedAt, 10),
	}}
}
