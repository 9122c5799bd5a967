package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"stakevault/native/staking"
	"stakevault/storage"
)

type fixedGate struct {
	owner [20]byte
}

func (g fixedGate) IsPaused() bool             { return false }
func (g fixedGate) IsOwner(addr [20]byte) bool { return addr == g.owner }

func buildEngine(t *testing.T, db storage.Database, now *int64) (*staking.Engine, *Vault, [20]byte) {
	t.Helper()
	mgr := NewManager(db)
	custody := testAddr(0xCC)
	vault := NewVault(mgr, custody)
	owner := testAddr(0xAD)

	engine, err := staking.NewEngine([]staking.Plan{
		{ID: 0, LockDuration: 10, RewardRateBps: 1_000},
		{ID: 1, LockDuration: 100, RewardRateBps: 2_500},
		{ID: 2, LockDuration: 1_000, RewardRateBps: 5_000},
		{ID: 3, LockDuration: 10_000, RewardRateBps: 10_000},
	})
	require.NoError(t, err)
	engine.SetState(mgr)
	engine.SetVault(vault)
	engine.SetGate(fixedGate{owner: owner})
	engine.SetNowFunc(func() int64 { return *now })
	return engine, vault, owner
}

// The ledger must survive a process restart: a fresh engine over the same
// database sees every position, counter and reservation.
func TestLedgerSurvivesRestart(t *testing.T) {
	db := storage.NewMemDB()
	now := int64(0)
	engine, vault, owner := buildEngine(t, db, &now)
	staker := testAddr(0x66)

	require.NoError(t, vault.Mint(owner, big.NewInt(10_000)))
	require.NoError(t, vault.Mint(staker, big.NewInt(10_000)))
	require.NoError(t, engine.DepositRewards(owner, big.NewInt(1_000)))

	index, err := engine.Stake(staker, 0, big.NewInt(1_000))
	require.NoError(t, err)

	// Rebuild everything over the same database.
	now = 10
	engine2, _, _ := buildEngine(t, db, &now)

	stats, err := engine2.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.TotalStaked.Cmp(big.NewInt(1_000)))
	require.Zero(t, stats.RewardPool.Cmp(big.NewInt(900)))
	require.EqualValues(t, 1, stats.TotalUsers)

	payout, err := engine2.Claim(staker, index)
	require.NoError(t, err)
	require.Zero(t, payout.Cmp(big.NewInt(1_100)))

	// The user marker also persisted: staking again must not double-count.
	require.NoError(t, vault.Mint(staker, big.NewInt(100)))
	_, err = engine2.Stake(staker, 0, big.NewInt(100))
	require.NoError(t, err)
	stats, _ = engine2.Stats()
	require.EqualValues(t, 1, stats.TotalUsers)
	require.EqualValues(t, 2, stats.TotalPositions)
}

// Refund activation recorded before a restart keeps governing claims after.
func TestRefundModePersists(t *testing.T) {
	db := storage.NewMemDB()
	now := int64(0)
	engine, vault, owner := buildEngine(t, db, &now)
	staker := testAddr(0x77)

	require.NoError(t, vault.Mint(owner, big.NewInt(10_000)))
	require.NoError(t, vault.Mint(staker, big.NewInt(10_000)))
	require.NoError(t, engine.DepositRewards(owner, big.NewInt(1_000)))
	_, err := engine.Stake(staker, 0, big.NewInt(1_000))
	require.NoError(t, err)

	now = 5
	require.NoError(t, engine.ActivateRefundMode(owner))

	now = 20
	engine2, _, _ := buildEngine(t, db, &now)
	payout, err := engine2.Claim(staker, 0)
	require.NoError(t, err)
	require.Zero(t, payout.Cmp(big.NewInt(1_050)))

	require.ErrorIs(t, engine2.ActivateRefundMode(owner), staking.ErrRefundModeActive)
}
