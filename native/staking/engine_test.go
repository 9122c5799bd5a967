package staking

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"stakevault/core/events"
)

type mockState struct {
	ledger    *Ledger
	positions map[[20]byte][]*Position
	users     map[[20]byte]bool
}

func newMockState() *mockState {
	return &mockState{
		ledger:    NewLedger(),
		positions: make(map[[20]byte][]*Position),
		users:     make(map[[20]byte]bool),
	}
}

func (m *mockState) StakingLedger() (*Ledger, error) { return m.ledger.Clone(), nil }

func (m *mockState) PutStakingLedger(l *Ledger) error {
	if l == nil {
		return fmt.Errorf("nil ledger")
	}
	m.ledger = l.Clone()
	return nil
}

func (m *mockState) StakingPositionCount(owner [20]byte) (uint64, error) {
	return uint64(len(m.positions[owner])), nil
}

func (m *mockState) StakingPosition(owner [20]byte, index uint64) (*Position, bool, error) {
	seq := m.positions[owner]
	if index >= uint64(len(seq)) {
		return nil, false, nil
	}
	return seq[index].Clone(), true, nil
}

func (m *mockState) PutStakingPosition(owner [20]byte, index uint64, pos *Position) error {
	seq := m.positions[owner]
	switch {
	case index == uint64(len(seq)):
		m.positions[owner] = append(seq, pos.Clone())
	case index < uint64(len(seq)):
		seq[index] = pos.Clone()
	default:
		return fmt.Errorf("index %d beyond tail", index)
	}
	return nil
}

func (m *mockState) StakingUserSeen(owner [20]byte) (bool, error) { return m.users[owner], nil }

func (m *mockState) MarkStakingUser(owner [20]byte) error {
	m.users[owner] = true
	return nil
}

type mockVault struct {
	balances map[[20]byte]*big.Int
	custody  *big.Int
	failIn   bool
	failOut  bool
}

func newMockVault() *mockVault {
	return &mockVault{balances: make(map[[20]byte]*big.Int), custody: big.NewInt(0)}
}

func (v *mockVault) fund(addr [20]byte, amount int64) {
	v.balances[addr] = big.NewInt(amount)
}

func (v *mockVault) balance(addr [20]byte) *big.Int {
	if bal, ok := v.balances[addr]; ok {
		return bal
	}
	return big.NewInt(0)
}

func (v *mockVault) TransferIn(from [20]byte, amount *big.Int) error {
	if v.failIn {
		return fmt.Errorf("transfer rejected")
	}
	bal := v.balance(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance")
	}
	v.balances[from] = new(big.Int).Sub(bal, amount)
	v.custody = new(big.Int).Add(v.custody, amount)
	return nil
}

func (v *mockVault) TransferOut(to [20]byte, amount *big.Int) error {
	if v.failOut {
		return fmt.Errorf("transfer rejected")
	}
	if v.custody.Cmp(amount) < 0 {
		return fmt.Errorf("custody underflow")
	}
	v.custody = new(big.Int).Sub(v.custody, amount)
	v.balances[to] = new(big.Int).Add(v.balance(to), amount)
	return nil
}

type mockGate struct {
	paused bool
	owner  [20]byte
}

func (g *mockGate) IsPaused() bool             { return g.paused }
func (g *mockGate) IsOwner(addr [20]byte) bool { return addr == g.owner }

type captureEmitter struct {
	emitted []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.emitted = append(c.emitted, evt)
}

func (c *captureEmitter) eventTypes() []string {
	out := make([]string, 0, len(c.emitted))
	for _, evt := range c.emitted {
		out = append(out, evt.EventType())
	}
	return out
}

func testPlans() []Plan {
	return []Plan{
		{ID: 0, LockDuration: 10, RewardRateBps: 1_000},
		{ID: 1, LockDuration: 100, RewardRateBps: 2_500},
		{ID: 2, LockDuration: 1_000, RewardRateBps: 5_000},
		{ID: 3, LockDuration: 0, RewardRateBps: 100},
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

type fixture struct {
	engine *Engine
	state  *mockState
	vault  *mockVault
	gate   *mockGate
	now    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine, err := NewEngine(testPlans())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f := &fixture{
		engine: engine,
		state:  newMockState(),
		vault:  newMockVault(),
		gate:   &mockGate{owner: newTestAddress(0xAD)},
	}
	engine.SetState(f.state)
	engine.SetVault(f.vault)
	engine.SetGate(f.gate)
	engine.SetNowFunc(func() int64 { return f.now })
	return f
}

func (f *fixture) fundPool(t *testing.T, amount int64) {
	t.Helper()
	f.vault.fund(f.gate.owner, amount)
	if err := f.engine.DepositRewards(f.gate.owner, big.NewInt(amount)); err != nil {
		t.Fatalf("deposit rewards: %v", err)
	}
}

func TestStakeReservesRewardAndUpdatesCounters(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x01)
	f.fundPool(t, 1_000)
	f.vault.fund(staker, 5_000)

	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if index != 0 {
		t.Fatalf("expected index 0, got %d", index)
	}

	stats, err := f.engine.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalStaked.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("total staked: got %s want 1000", stats.TotalStaked)
	}
	if stats.RewardPool.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("reward pool: got %s want 900 (100 reserved)", stats.RewardPool)
	}
	if stats.TotalUsers != 1 || stats.TotalPositions != 1 {
		t.Fatalf("counters: users=%d positions=%d", stats.TotalUsers, stats.TotalPositions)
	}
	if got := f.vault.balance(staker); got.Cmp(big.NewInt(4_000)) != 0 {
		t.Fatalf("staker balance: got %s want 4000", got)
	}

	// A second stake by the same owner must not increment the user counter.
	if _, err := f.engine.Stake(staker, 0, big.NewInt(500)); err != nil {
		t.Fatalf("second stake: %v", err)
	}
	stats, _ = f.engine.Stats()
	if stats.TotalUsers != 1 {
		t.Fatalf("total users after second stake: got %d want 1", stats.TotalUsers)
	}
	if stats.TotalPositions != 2 {
		t.Fatalf("total positions: got %d want 2", stats.TotalPositions)
	}
}

func TestStakeAdmissionBoundary(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x02)
	f.vault.fund(staker, 10_000)
	f.fundPool(t, 100)

	// Promised reward is exactly the pool: admission succeeds at the boundary.
	if _, err := f.engine.Stake(staker, 0, big.NewInt(1_000)); err != nil {
		t.Fatalf("boundary stake: %v", err)
	}
	stats, _ := f.engine.Stats()
	if stats.RewardPool.Sign() != 0 {
		t.Fatalf("pool after boundary stake: got %s want 0", stats.RewardPool)
	}

	// The next promise has nothing left to reserve against.
	if _, err := f.engine.Stake(staker, 0, big.NewInt(10)); !errors.Is(err, ErrInsufficientRewardPool) {
		t.Fatalf("expected ErrInsufficientRewardPool, got %v", err)
	}
}

func TestStakePreconditionOrder(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x03)

	if _, err := f.engine.Stake(staker, 9, big.NewInt(100)); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
	if _, err := f.engine.Stake(staker, 0, big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := f.engine.Stake(staker, 0, nil); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount for nil amount, got %v", err)
	}

	// Once refund mode is on it preempts every other admission check.
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}
	if _, err := f.engine.Stake(staker, 9, big.NewInt(0)); !errors.Is(err, ErrRefundModeActive) {
		t.Fatalf("expected ErrRefundModeActive, got %v", err)
	}
}

func TestClaimNormalMode(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x04)
	f.fundPool(t, 100)
	f.vault.fund(staker, 1_000)

	f.now = 0
	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	f.now = 5
	if _, err := f.engine.Claim(staker, index); !errors.Is(err, ErrLockNotEnded) {
		t.Fatalf("expected ErrLockNotEnded at t=5, got %v", err)
	}

	f.now = 10
	payout, err := f.engine.Claim(staker, index)
	if err != nil {
		t.Fatalf("claim at t=10: %v", err)
	}
	if payout.Cmp(big.NewInt(1_100)) != 0 {
		t.Fatalf("payout: got %s want 1100", payout)
	}
	if got := f.vault.balance(staker); got.Cmp(big.NewInt(1_100)) != 0 {
		t.Fatalf("staker balance: got %s want 1100", got)
	}

	stats, _ := f.engine.Stats()
	if stats.TotalStaked.Sign() != 0 {
		t.Fatalf("total staked after claim: got %s want 0", stats.TotalStaked)
	}

	// Terminal transition: the second claim fails and changes nothing.
	if _, err := f.engine.Claim(staker, index); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	after, _ := f.engine.Stats()
	if after.TotalStaked.Cmp(stats.TotalStaked) != 0 || after.RewardPool.Cmp(stats.RewardPool) != 0 {
		t.Fatalf("state changed by failed second claim")
	}
}

func TestClaimRefundModeProrates(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x05)
	f.fundPool(t, 100)
	f.vault.fund(staker, 1_000)

	f.now = 0
	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	f.now = 5
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}

	f.now = 20
	payout, err := f.engine.Claim(staker, index)
	if err != nil {
		t.Fatalf("refund claim: %v", err)
	}
	if payout.Cmp(big.NewInt(1_050)) != 0 {
		t.Fatalf("payout: got %s want 1050", payout)
	}

	// Half the reservation was unconsumed and flows back into the pool.
	stats, _ := f.engine.Stats()
	if stats.RewardPool.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("pool after refund claim: got %s want 50", stats.RewardPool)
	}
}

func TestClaimRefundModeCapsElapsedAtDuration(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x06)
	f.fundPool(t, 100)
	f.vault.fund(staker, 1_000)

	f.now = 0
	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	// Refund begins after natural maturity: the position earns the full
	// reward, never more.
	f.now = 15
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}
	payout, err := f.engine.Claim(staker, index)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout.Cmp(big.NewInt(1_100)) != 0 {
		t.Fatalf("payout: got %s want 1100", payout)
	}
	stats, _ := f.engine.Stats()
	if stats.RewardPool.Sign() != 0 {
		t.Fatalf("pool released: got %s want 0", stats.RewardPool)
	}
}

func TestClaimRefundModeEdges(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x07)

	f.now = 50
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}

	// Seeded directly: a position opened at the activation instant is not
	// eligible for prorated payout.
	if err := f.state.PutStakingPosition(staker, 0, &Position{Principal: big.NewInt(100), StartTime: 50, PlanID: 0}); err != nil {
		t.Fatalf("seed position: %v", err)
	}
	if _, err := f.engine.Claim(staker, 0); !errors.Is(err, ErrRefundBeforeStake) {
		t.Fatalf("expected ErrRefundBeforeStake, got %v", err)
	}

	// A zero-duration plan must fail rather than divide by zero.
	if err := f.state.PutStakingPosition(staker, 1, &Position{Principal: big.NewInt(100), StartTime: 10, PlanID: 3}); err != nil {
		t.Fatalf("seed position: %v", err)
	}
	if _, err := f.engine.Claim(staker, 1); !errors.Is(err, ErrInvalidPlanDuration) {
		t.Fatalf("expected ErrInvalidPlanDuration, got %v", err)
	}

	// An empty placeholder slot is rejected defensively.
	if err := f.state.PutStakingPosition(staker, 2, &Position{Principal: big.NewInt(0), StartTime: 10, PlanID: 0}); err != nil {
		t.Fatalf("seed position: %v", err)
	}
	if _, err := f.engine.Claim(staker, 2); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}

	if _, err := f.engine.Claim(staker, 99); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestRefundModeIsOneWay(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x08)
	f.vault.fund(staker, 1_000)

	f.now = 7
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}
	if err := f.engine.ActivateRefundMode(f.gate.owner); !errors.Is(err, ErrRefundModeActive) {
		t.Fatalf("expected ErrRefundModeActive on second activation, got %v", err)
	}
	if _, err := f.engine.Stake(staker, 0, big.NewInt(100)); !errors.Is(err, ErrRefundModeActive) {
		t.Fatalf("expected ErrRefundModeActive for post-activation stake, got %v", err)
	}

	stats, _ := f.engine.Stats()
	if !stats.RefundMode || stats.RefundActivatedAt != 7 {
		t.Fatalf("refund state: mode=%v activatedAt=%d", stats.RefundMode, stats.RefundActivatedAt)
	}
}

func TestRewardPoolFundingAndDraining(t *testing.T) {
	f := newFixture(t)
	outsider := newTestAddress(0x09)
	f.vault.fund(f.gate.owner, 10_000)
	f.vault.fund(outsider, 10_000)

	if err := f.engine.DepositRewards(outsider, big.NewInt(100)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := f.engine.DepositRewards(f.gate.owner, big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if err := f.engine.DepositRewards(f.gate.owner, big.NewInt(500)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := f.engine.WithdrawRewards(outsider, outsider, big.NewInt(10)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := f.engine.WithdrawRewards(f.gate.owner, f.gate.owner, big.NewInt(501)); !errors.Is(err, ErrInvalidWithdrawAmount) {
		t.Fatalf("expected ErrInvalidWithdrawAmount, got %v", err)
	}
	if err := f.engine.WithdrawRewards(f.gate.owner, f.gate.owner, big.NewInt(0)); !errors.Is(err, ErrInvalidWithdrawAmount) {
		t.Fatalf("expected ErrInvalidWithdrawAmount for zero, got %v", err)
	}
	if err := f.engine.WithdrawRewards(f.gate.owner, f.gate.owner, big.NewInt(500)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	stats, _ := f.engine.Stats()
	if stats.RewardPool.Sign() != 0 {
		t.Fatalf("pool after drain: got %s want 0", stats.RewardPool)
	}
	if got := f.vault.balance(f.gate.owner); got.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatalf("owner balance round trip: got %s want 10000", got)
	}
}

func TestPausedGateRejectsMutations(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x0A)
	f.gate.paused = true

	if _, err := f.engine.Stake(staker, 0, big.NewInt(100)); !errors.Is(err, ErrPaused) {
		t.Fatalf("stake: expected ErrPaused, got %v", err)
	}
	if _, err := f.engine.Claim(staker, 0); !errors.Is(err, ErrPaused) {
		t.Fatalf("claim: expected ErrPaused, got %v", err)
	}
	if err := f.engine.DepositRewards(f.gate.owner, big.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("deposit: expected ErrPaused, got %v", err)
	}
	if err := f.engine.WithdrawRewards(f.gate.owner, f.gate.owner, big.NewInt(1)); !errors.Is(err, ErrPaused) {
		t.Fatalf("withdraw: expected ErrPaused, got %v", err)
	}
	if err := f.engine.ActivateRefundMode(f.gate.owner); !errors.Is(err, ErrPaused) {
		t.Fatalf("activate: expected ErrPaused, got %v", err)
	}
}

func TestTransferFailureAbortsWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x0B)
	f.fundPool(t, 1_000)
	f.vault.fund(staker, 1_000)
	f.vault.failIn = true

	_, err := f.engine.Stake(staker, 0, big.NewInt(100))
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	stats, _ := f.engine.Stats()
	if stats.TotalStaked.Sign() != 0 || stats.TotalPositions != 0 {
		t.Fatalf("state mutated despite aborted transfer: %+v", stats)
	}
	if stats.RewardPool.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("reservation leaked: pool %s", stats.RewardPool)
	}

	f.vault.failIn = false
	index, err := f.engine.Stake(staker, 0, big.NewInt(100))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	f.now = 100
	f.vault.failOut = true
	if _, err := f.engine.Claim(staker, index); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed on claim, got %v", err)
	}
	pos, ok, _ := f.state.StakingPosition(staker, index)
	if !ok || pos.Claimed {
		t.Fatalf("claim marked despite aborted transfer")
	}
}

func TestPendingRewardProjection(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x0C)
	f.fundPool(t, 100)
	f.vault.fund(staker, 1_000)

	f.now = 0
	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	f.now = 5
	pending, err := f.engine.PendingReward(staker, index)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending.Sign() != 0 {
		t.Fatalf("pending before lock end: got %s want 0", pending)
	}

	f.now = 10
	pending, _ = f.engine.PendingReward(staker, index)
	if pending.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("pending at maturity: got %s want 100", pending)
	}

	if _, err := f.engine.PendingReward(staker, 42); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}

	f.now = 10
	if _, err := f.engine.Claim(staker, index); err != nil {
		t.Fatalf("claim: %v", err)
	}
	pending, _ = f.engine.PendingReward(staker, index)
	if pending.Sign() != 0 {
		t.Fatalf("pending after claim: got %s want 0", pending)
	}
}

func TestPendingRewardRefundMode(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x0D)
	f.fundPool(t, 100)
	f.vault.fund(staker, 1_000)

	f.now = 0
	index, _ := f.engine.Stake(staker, 0, big.NewInt(1_000))
	f.now = 5
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}
	f.now = 20
	pending, err := f.engine.PendingReward(staker, index)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("prorated pending: got %s want 50", pending)
	}
}

func TestUserPositionsKeepCreationOrder(t *testing.T) {
	f := newFixture(t)
	staker := newTestAddress(0x0E)
	f.fundPool(t, 10_000)
	f.vault.fund(staker, 10_000)

	amounts := []int64{100, 250, 400}
	for i, amount := range amounts {
		f.now = int64(i)
		if _, err := f.engine.Stake(staker, 1, big.NewInt(amount)); err != nil {
			t.Fatalf("stake %d: %v", i, err)
		}
	}
	positions, err := f.engine.UserPositions(staker)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != len(amounts) {
		t.Fatalf("position count: got %d want %d", len(positions), len(amounts))
	}
	for i, pos := range positions {
		if pos.Principal.Cmp(big.NewInt(amounts[i])) != 0 {
			t.Fatalf("position %d principal: got %s want %d", i, pos.Principal, amounts[i])
		}
		if pos.StartTime != uint64(i) {
			t.Fatalf("position %d start time: got %d want %d", i, pos.StartTime, i)
		}
	}
}

func TestEngineEmitsCanonicalEvents(t *testing.T) {
	f := newFixture(t)
	emitter := &captureEmitter{}
	f.engine.SetEmitter(emitter)
	staker := newTestAddress(0x0F)
	f.vault.fund(staker, 1_000)
	f.fundPool(t, 200)

	f.now = 0
	index, err := f.engine.Stake(staker, 0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	f.now = 3
	if err := f.engine.ActivateRefundMode(f.gate.owner); err != nil {
		t.Fatalf("activate refund mode: %v", err)
	}
	f.now = 10
	if _, err := f.engine.Claim(staker, index); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := f.engine.WithdrawRewards(f.gate.owner, f.gate.owner, big.NewInt(10)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	want := []string{
		EventTypeRewardsDeposited,
		EventTypePositionOpened,
		EventTypeRefundActivated,
		EventTypePositionClaimed,
		EventTypeRewardsWithdrawn,
	}
	got := emitter.eventTypes()
	if len(got) != len(want) {
		t.Fatalf("event count: got %d (%v) want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestRewardFloorsTowardsZero(t *testing.T) {
	cases := []struct {
		name      string
		principal int64
		bps       uint32
		want      int64
	}{
		{name: "exact", principal: 1_000, bps: 1_000, want: 100},
		{name: "floors", principal: 999, bps: 1_000, want: 99},
		{name: "tiny", principal: 9, bps: 1_000, want: 0},
		{name: "full rate", principal: 33, bps: 10_000, want: 33},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			plan := Plan{LockDuration: 10, RewardRateBps: tc.bps}
			got := plan.Reward(big.NewInt(tc.principal))
			if got.Cmp(big.NewInt(tc.want)) != 0 {
				t.Fatalf("reward: got %s want %d", got, tc.want)
			}
		})
	}
}
