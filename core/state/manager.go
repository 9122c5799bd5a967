package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"stakevault/core/types"
	"stakevault/native/staking"
	"stakevault/storage"
)

// Manager persists the staking ledger, per-owner position sequences and
// account balances in deterministic key/value form. The encoded
// representations mirror the in-memory types through stored* structs so the
// layout stays stable across releases.
type Manager struct {
	db storage.Database
}

// NewManager wraps the given database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var _ staking.LedgerState = (*Manager)(nil)

type storedPosition struct {
	Principal *big.Int
	StartTime uint64
	PlanID    uint8
	Claimed   bool
}

type storedLedger struct {
	TotalStaked       *big.Int
	RewardPool        *big.Int
	TotalUsers        uint64
	TotalPositions    uint64
	RefundMode        bool
	RefundActivatedAt uint64
}

func newStoredPosition(pos *staking.Position) *storedPosition {
	if pos == nil {
		pos = &staking.Position{}
	}
	stored := &storedPosition{
		StartTime: pos.StartTime,
		PlanID:    pos.PlanID,
		Claimed:   pos.Claimed,
		Principal: big.NewInt(0),
	}
	if pos.Principal != nil {
		stored.Principal = new(big.Int).Set(pos.Principal)
	}
	return stored
}

func (s *storedPosition) toPosition() *staking.Position {
	pos := &staking.Position{
		StartTime: s.StartTime,
		PlanID:    s.PlanID,
		Claimed:   s.Claimed,
		Principal: big.NewInt(0),
	}
	if s.Principal != nil {
		pos.Principal = new(big.Int).Set(s.Principal)
	}
	return pos
}

// StakingLedger loads the global counters, returning an empty ledger when
// nothing has been persisted yet.
func (m *Manager) StakingLedger() (*staking.Ledger, error) {
	raw, err := m.db.Get([]byte(ledgerKey))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return staking.NewLedger(), nil
		}
		return nil, err
	}
	var stored storedLedger
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode ledger: %w", err)
	}
	ledger := &staking.Ledger{
		TotalUsers:        stored.TotalUsers,
		TotalPositions:    stored.TotalPositions,
		RefundMode:        stored.RefundMode,
		RefundActivatedAt: stored.RefundActivatedAt,
		TotalStaked:       big.NewInt(0),
		RewardPool:        big.NewInt(0),
	}
	if stored.TotalStaked != nil {
		ledger.TotalStaked = stored.TotalStaked
	}
	if stored.RewardPool != nil {
		ledger.RewardPool = stored.RewardPool
	}
	return ledger, nil
}

// PutStakingLedger persists the global counters.
func (m *Manager) PutStakingLedger(ledger *staking.Ledger) error {
	if ledger == nil {
		return fmt.Errorf("state: nil ledger")
	}
	ledger = ledger.Clone()
	raw, err := rlp.EncodeToBytes(&storedLedger{
		TotalStaked:       ledger.TotalStaked,
		RewardPool:        ledger.RewardPool,
		TotalUsers:        ledger.TotalUsers,
		TotalPositions:    ledger.TotalPositions,
		RefundMode:        ledger.RefundMode,
		RefundActivatedAt: ledger.RefundActivatedAt,
	})
	if err != nil {
		return fmt.Errorf("state: encode ledger: %w", err)
	}
	return m.db.Put([]byte(ledgerKey), raw)
}

// StakingPositionCount returns the length of the owner's position sequence.
func (m *Manager) StakingPositionCount(owner [20]byte) (uint64, error) {
	raw, err := m.db.Get(addrKey(metaPrefix, owner))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("state: malformed position count for %x", owner)
	}
	return binary.BigEndian.Uint64(raw), nil
}

// StakingPosition loads one slot of the owner's sequence.
func (m *Manager) StakingPosition(owner [20]byte, index uint64) (*staking.Position, bool, error) {
	raw, err := m.db.Get(positionKey(owner, index))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedPosition
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode position: %w", err)
	}
	return stored.toPosition(), true, nil
}

// PutStakingPosition writes a slot and extends the sequence length when the
// slot is appended at the current tail. Indices are never reused; writing
// beyond the tail is rejected to keep the sequence dense.
func (m *Manager) PutStakingPosition(owner [20]byte, index uint64, pos *staking.Position) error {
	if pos == nil {
		return fmt.Errorf("state: nil position")
	}
	count, err := m.StakingPositionCount(owner)
	if err != nil {
		return err
	}
	if index > count {
		return fmt.Errorf("state: position index %d beyond sequence tail %d", index, count)
	}
	raw, err := rlp.EncodeToBytes(newStoredPosition(pos))
	if err != nil {
		return fmt.Errorf("state: encode position: %w", err)
	}
	if err := m.db.Put(positionKey(owner, index), raw); err != nil {
		return err
	}
	if index == count {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], count+1)
		return m.db.Put(addrKey(metaPrefix, owner), buf[:])
	}
	return nil
}

// StakingUserSeen reports whether the owner has ever staked.
func (m *Manager) StakingUserSeen(owner [20]byte) (bool, error) {
	return m.db.Has(addrKey(userPrefix, owner))
}

// MarkStakingUser records the owner's first stake.
func (m *Manager) MarkStakingUser(owner [20]byte) error {
	return m.db.Put(addrKey(userPrefix, owner), []byte{1})
}

// GetAccount loads the balance record for an address, returning an empty
// account when none exists.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	raw, err := m.db.Get(addrKey(accountPrefix, addr))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return types.EnsureAccount(nil), nil
		}
		return nil, err
	}
	var stored struct {
		Balance *big.Int
		Nonce   uint64
	}
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	acc := &types.Account{Nonce: stored.Nonce, Balance: big.NewInt(0)}
	if stored.Balance != nil {
		acc.Balance = stored.Balance
	}
	return acc, nil
}

// PutAccount persists the balance record for an address.
func (m *Manager) PutAccount(addr [20]byte, acc *types.Account) error {
	acc = types.EnsureAccount(acc)
	raw, err := rlp.EncodeToBytes(&struct {
		Balance *big.Int
		Nonce   uint64
	}{Balance: acc.Balance, Nonce: acc.Nonce})
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return m.db.Put(addrKey(accountPrefix, addr), raw)
}
