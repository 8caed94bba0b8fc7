package crapstable

import (
	"errors"
	"sync"
)

var (
	ErrVaultInsufficientBalance = errors.New("vault: insufficient balance")
	ErrVaultInvalidAmount       = errors.New("vault: invalid amount")
)

/*
VaultBackend is the balance collaborator the table engine moves value through.
Debit is called on bet placement, Credit on removal refunds and winning or
pushed settlements. The engine never hands the vault a reference to table
state; a failing Credit surfaces as a pending claim, never as a dropped
payout.
*/
type VaultBackend interface {
	Debit(playerID string, amount int64) error
	Credit(playerID string, amount int64) error
}

// NativeVaultBackend is an in-memory vault for embedding and tests.
type NativeVaultBackend struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewNativeVaultBackend() *NativeVaultBackend {
	return &NativeVaultBackend{
		balances: make(map[string]int64),
	}
}

func (nvb *NativeVaultBackend) Deposit(playerID string, amount int64) {
	nvb.mu.Lock()
	defer nvb.mu.Unlock()
	nvb.balances[playerID] += amount
}

func (nvb *NativeVaultBackend) BalanceOf(playerID string) int64 {
	nvb.mu.Lock()
	defer nvb.mu.Unlock()
	return nvb.balances[playerID]
}

func (nvb *NativeVaultBackend) Debit(playerID string, amount int64) error {
	if amount <= 0 {
		return ErrVaultInvalidAmount
	}

	nvb.mu.Lock()
	defer nvb.mu.Unlock()

	if nvb.balances[playerID] < amount {
		return ErrVaultInsufficientBalance
	}
	nvb.balances[playerID] -= amount
	return nil
}

func (nvb *NativeVaultBackend) Credit(playerID string, amount int64) error {
	if amount <= 0 {
		return ErrVaultInvalidAmount
	}

	nvb.mu.Lock()
	defer nvb.mu.Unlock()

	nvb.balances[playerID] += amount
	return nil
}
