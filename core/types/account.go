package types

import "math/big"

// Account holds the asset balance tracked for an address. The vault custody
// account and every staker account share this shape.
type Account struct {
	Balance *big.Int
	Nonce   uint64
}

// EnsureAccount normalises a possibly-nil account into one with a non-nil
// balance so arithmetic never has to nil-check.
func EnsureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	clone := &Account{Nonce: a.Nonce, Balance: big.NewInt(0)}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return clone
}
