package state

import (
	"fmt"
	"math/big"

	"stakevault/native/staking"
)

// Vault is the value-transfer collaborator backed by the account balances in
// the same store as the ledger. All custody funds sit under a single address;
// the only paths that credit it are TransferIn calls from the engine, so
// unsolicited deposits have no entry point.
type Vault struct {
	mgr     *Manager
	custody [20]byte
}

// NewVault creates a vault moving funds between accounts and the custody
// address.
func NewVault(mgr *Manager, custody [20]byte) *Vault {
	return &Vault{mgr: mgr, custody: custody}
}

var _ staking.TokenVault = (*Vault)(nil)

func (v *Vault) move(from, to [20]byte, amount *big.Int) error {
	if v == nil || v.mgr == nil {
		return fmt.Errorf("vault: state not configured")
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("vault: amount must be positive")
	}
	fromAcc, err := v.mgr.GetAccount(from)
	if err != nil {
		return err
	}
	if fromAcc.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("vault: insufficient balance")
	}
	toAcc, err := v.mgr.GetAccount(to)
	if err != nil {
		return err
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amount)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	if err := v.mgr.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return v.mgr.PutAccount(to, toAcc)
}

// TransferIn pulls amount from the given account into custody.
func (v *Vault) TransferIn(from [20]byte, amount *big.Int) error {
	return v.move(from, v.custody, amount)
}

// TransferOut pushes amount from custody to the given account.
func (v *Vault) TransferOut(to [20]byte, amount *big.Int) error {
	return v.move(v.custody, to, amount)
}

// Mint credits an account directly. It exists for genesis funding and tests;
// the ledger itself only moves funds through the two transfer paths.
func (v *Vault) Mint(addr [20]byte, amount *big.Int) error {
	if v == nil || v.mgr == nil {
		return fmt.Errorf("vault: state not configured")
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("vault: amount must be positive")
	}
	acc, err := v.mgr.GetAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return v.mgr.PutAccount(addr, acc)
}
