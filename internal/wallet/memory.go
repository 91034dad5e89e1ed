// Package wallet provides economy backends for the bank. The in-memory
// implementation backs tests and standalone deployments; a real game server
// supplies its own adapter over the same three methods.
package wallet

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Memory is a thread-safe in-memory wallet ledger.
type Memory struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]decimal.Decimal)}
}

// Balance returns the owner's balance, zero for unknown owners.
func (w *Memory) Balance(owner string) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[owner], nil
}

// Withdraw removes amount, returning false when the balance cannot cover it.
// The memo is for adapters that label movements; the in-memory ledger
// discards it.
func (w *Memory) Withdraw(owner string, amount decimal.Decimal, memo string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	balance := w.balances[owner]
	if balance.LessThan(amount) {
		return false, nil
	}
	w.balances[owner] = balance.Sub(amount)
	return true, nil
}

// Deposit adds amount to the owner's balance.
func (w *Memory) Deposit(owner string, amount decimal.Decimal, memo string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[owner] = w.balances[owner].Add(amount)
	return nil
}

// Set pins an owner's balance. Test and seeding helper.
func (w *Memory) Set(owner string, amount decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[owner] = amount
}
