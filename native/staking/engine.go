package staking

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"stakevault/core/events"
	"stakevault/core/types"
)

var (
	errNilState = fmt.Errorf("staking engine: state not configured")
	errNilVault = fmt.Errorf("staking engine: token vault not configured")
)

// LedgerState describes the minimal functionality the staking engine needs
// from the surrounding state implementation. Positions form an append-only
// sequence per owner; indices are never reused.
type LedgerState interface {
	StakingLedger() (*Ledger, error)
	PutStakingLedger(*Ledger) error
	StakingPositionCount(owner [20]byte) (uint64, error)
	StakingPosition(owner [20]byte, index uint64) (*Position, bool, error)
	PutStakingPosition(owner [20]byte, index uint64, pos *Position) error
	StakingUserSeen(owner [20]byte) (bool, error)
	MarkStakingUser(owner [20]byte) error
}

// TokenVault is the external value-transfer collaborator. Both calls are
// atomic: on error no funds have moved and the calling operation aborts with
// no ledger write.
type TokenVault interface {
	TransferIn(from [20]byte, amount *big.Int) error
	TransferOut(to [20]byte, amount *big.Int) error
}

// Gate controls access to the mutating entry points.
type Gate interface {
	IsPaused() bool
	IsOwner(addr [20]byte) bool
}

type openGate struct{}

func (openGate) IsPaused() bool        { return false }
func (openGate) IsOwner([20]byte) bool { return false }

type stakingEvent struct {
	evt *types.Event
}

func (e stakingEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e stakingEvent) Event() *types.Event { return e.evt }

// Engine wires the position/reward accounting logic with external state, the
// token vault and event emitters. Every mutating operation holds the engine
// mutex for its full read-modify-write sequence, so no two operations can
// interleave against the shared ledger.
type Engine struct {
	mu      sync.Mutex
	state   LedgerState
	vault   TokenVault
	gate    Gate
	emitter events.Emitter
	plans   [PlanCount]Plan
	nowFn   func() int64
}

// NewEngine creates a staking engine over the supplied plan table. The table
// is validated once and read-only thereafter.
func NewEngine(plans []Plan) (*Engine, error) {
	table, err := SanitizePlans(plans)
	if err != nil {
		return nil, err
	}
	return &Engine{
		plans:   table,
		gate:    openGate{},
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}, nil
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state LedgerState) { e.state = state }

// SetVault configures the value-transfer collaborator.
func (e *Engine) SetVault(vault TokenVault) { e.vault = vault }

// SetGate configures the pause/ownership gate. Passing nil resets to a gate
// that is never paused and recognises no owner.
func (e *Engine) SetGate(gate Gate) {
	if gate == nil {
		e.gate = openGate{}
		return
	}
	e.gate = gate
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(stakingEvent{evt: event})
}

func (e *Engine) now() uint64 {
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

// Plans returns the full plan table for observers.
func (e *Engine) Plans() []Plan {
	out := make([]Plan, PlanCount)
	copy(out, e.plans[:])
	return out
}

// PlanFor resolves a plan id, failing for ids outside [0, PlanCount).
func (e *Engine) PlanFor(id uint8) (Plan, error) {
	if int(id) >= PlanCount {
		return Plan{}, ErrInvalidPlan
	}
	return e.plans[id], nil
}

func (e *Engine) requireConfigured() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.vault == nil {
		return errNilVault
	}
	return nil
}

func (e *Engine) loadLedger() (*Ledger, error) {
	ledger, err := e.state.StakingLedger()
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = NewLedger()
	}
	return ledger.Normalize(), nil
}

// Stake admits a new position under the given plan. The full-term reward is
// reserved from the pool immediately so the ledger never promises more than
// it holds. Returns the index of the new position in the caller's sequence.
func (e *Engine) Stake(owner [20]byte, planID uint8, amount *big.Int) (uint64, error) {
	if err := e.requireConfigured(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.IsPaused() {
		return 0, ErrPaused
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return 0, err
	}
	if ledger.RefundMode {
		return 0, ErrRefundModeActive
	}
	plan, err := e.PlanFor(planID)
	if err != nil {
		return 0, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	reward := plan.Reward(amount)
	if reward.Cmp(ledger.RewardPool) > 0 {
		return 0, ErrInsufficientRewardPool
	}

	if err := e.vault.TransferIn(owner, amount); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	index, err := e.state.StakingPositionCount(owner)
	if err != nil {
		return 0, err
	}
	pos := &Position{
		Principal: new(big.Int).Set(amount),
		StartTime: e.now(),
		PlanID:    plan.ID,
	}
	if err := e.state.PutStakingPosition(owner, index, pos); err != nil {
		return 0, err
	}

	seen, err := e.state.StakingUserSeen(owner)
	if err != nil {
		return 0, err
	}
	if !seen {
		if err := e.state.MarkStakingUser(owner); err != nil {
			return 0, err
		}
		ledger.TotalUsers++
	}
	ledger.TotalPositions++
	ledger.TotalStaked = new(big.Int).Add(ledger.TotalStaked, amount)
	ledger.RewardPool = new(big.Int).Sub(ledger.RewardPool, reward)
	if err := e.state.PutStakingLedger(ledger); err != nil {
		return 0, err
	}

	e.emit(NewPositionOpenedEvent(owner, index, pos, reward))
	return index, nil
}

// claimOutcome captures the payout math for a position so Claim and
// PendingReward share one implementation.
type claimOutcome struct {
	reward   *big.Int
	released *big.Int // unconsumed reservation returned to the pool
}

func (e *Engine) resolveClaim(pos *Position, ledger *Ledger, now uint64) (*claimOutcome, error) {
	plan, err := e.PlanFor(pos.PlanID)
	if err != nil {
		return nil, err
	}
	full := plan.Reward(pos.Principal)
	if !ledger.RefundMode {
		if now < pos.StartTime+plan.LockDuration {
			return nil, ErrLockNotEnded
		}
		return &claimOutcome{reward: full, released: big.NewInt(0)}, nil
	}
	if ledger.RefundActivatedAt <= pos.StartTime {
		return nil, ErrRefundBeforeStake
	}
	if plan.LockDuration == 0 {
		return nil, ErrInvalidPlanDuration
	}
	elapsed := ledger.RefundActivatedAt - pos.StartTime
	if elapsed > plan.LockDuration {
		elapsed = plan.LockDuration
	}
	reward := new(big.Int).Mul(full, new(big.Int).SetUint64(elapsed))
	reward.Quo(reward, new(big.Int).SetUint64(plan.LockDuration))
	released := new(big.Int).Sub(full, reward)
	return &claimOutcome{reward: reward, released: released}, nil
}

// Claim resolves the caller's position at the given index, paying out
// principal plus reward. The payout rule is selected by the refund-mode flag
// at claim time: full pre-committed reward in normal mode once the lock has
// ended, or a payout prorated to time elapsed before refund activation. The
// unconsumed share of the reservation flows back into the pool. This is the
// position's terminal transition.
func (e *Engine) Claim(owner [20]byte, index uint64) (*big.Int, error) {
	if err := e.requireConfigured(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.IsPaused() {
		return nil, ErrPaused
	}
	pos, ok, err := e.state.StakingPosition(owner, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	if pos.Claimed {
		return nil, ErrAlreadyClaimed
	}
	if pos.Principal == nil || pos.Principal.Sign() <= 0 {
		return nil, ErrInvalidPosition
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	outcome, err := e.resolveClaim(pos, ledger, e.now())
	if err != nil {
		return nil, err
	}

	payout := new(big.Int).Add(pos.Principal, outcome.reward)
	if err := e.vault.TransferOut(owner, payout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	claimed := pos.Clone()
	claimed.Claimed = true
	if err := e.state.PutStakingPosition(owner, index, claimed); err != nil {
		return nil, err
	}
	ledger.TotalStaked = new(big.Int).Sub(ledger.TotalStaked, pos.Principal)
	if outcome.released.Sign() > 0 {
		ledger.RewardPool = new(big.Int).Add(ledger.RewardPool, outcome.released)
	}
	if err := e.state.PutStakingLedger(ledger); err != nil {
		return nil, err
	}

	e.emit(NewPositionClaimedEvent(owner, index, claimed, outcome.reward, outcome.released, ledger.RefundMode))
	return payout, nil
}

// DepositRewards pulls reward liquidity into the pool. Owner only.
func (e *Engine) DepositRewards(caller [20]byte, amount *big.Int) error {
	if err := e.requireConfigured(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.IsPaused() {
		return ErrPaused
	}
	if !e.gate.IsOwner(caller) {
		return ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return err
	}
	if err := e.vault.TransferIn(caller, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	ledger.RewardPool = new(big.Int).Add(ledger.RewardPool, amount)
	if err := e.state.PutStakingLedger(ledger); err != nil {
		return err
	}
	e.emit(NewRewardsDepositedEvent(caller, amount, ledger.RewardPool))
	return nil
}

// WithdrawRewards drains unencumbered liquidity from the pool. Owner only;
// the amount must be positive and must not exceed the current pool, which by
// construction only ever holds funds not reserved for open positions.
func (e *Engine) WithdrawRewards(caller, to [20]byte, amount *big.Int) error {
	if err := e.requireConfigured(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.IsPaused() {
		return ErrPaused
	}
	if !e.gate.IsOwner(caller) {
		return ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidWithdrawAmount
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return err
	}
	if amount.Cmp(ledger.RewardPool) > 0 {
		return ErrInvalidWithdrawAmount
	}
	if err := e.vault.TransferOut(to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	ledger.RewardPool = new(big.Int).Sub(ledger.RewardPool, amount)
	if err := e.state.PutStakingLedger(ledger); err != nil {
		return err
	}
	e.emit(NewRewardsWithdrawnEvent(to, amount, ledger.RewardPool))
	return nil
}

// ActivateRefundMode switches the ledger into its terminal wind-down state.
// One-shot and irreversible: new stakes are rejected afterwards and every
// claim, regardless of when the position was opened, uses the prorated rule.
func (e *Engine) ActivateRefundMode(caller [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gate.IsPaused() {
		return ErrPaused
	}
	if !e.gate.IsOwner(caller) {
		return ErrUnauthorized
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return err
	}
	if ledger.RefundMode {
		return ErrRefundModeActive
	}
	ledger.RefundMode = true
	ledger.RefundActivatedAt = e.now()
	if err := e.state.PutStakingLedger(ledger); err != nil {
		return err
	}
	e.emit(NewRefundActivatedEvent(ledger.RefundActivatedAt))
	return nil
}

// PendingReward replays the claim computation without mutating state. It
// returns zero for claimed or empty positions and whenever the relevant time
// condition is not yet satisfied.
func (e *Engine) PendingReward(owner [20]byte, index uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok, err := e.state.StakingPosition(owner, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	if pos.Claimed || pos.Principal == nil || pos.Principal.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	ledger, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	outcome, err := e.resolveClaim(pos, ledger, e.now())
	if err != nil {
		return big.NewInt(0), nil
	}
	return outcome.reward, nil
}

// UserPositions returns the owner's full position sequence in creation order.
func (e *Engine) UserPositions(owner [20]byte) ([]*Position, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	count, err := e.state.StakingPositionCount(owner)
	if err != nil {
		return nil, err
	}
	out := make([]*Position, 0, count)
	for i := uint64(0); i < count; i++ {
		pos, ok, err := e.state.StakingPosition(owner, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("staking engine: position %d missing from sequence", i)
		}
		out = append(out, pos)
	}
	return out, nil
}

// Stats exposes the global counters.
func (e *Engine) Stats() (*Ledger, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, err := e.loadLedger()
	if err != nil {
		return nil, err
	}
	return ledger.Clone(), nil
}
