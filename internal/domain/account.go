// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNegativeInitialBalance indicates that the account was requested with a balance below zero.
	ErrNegativeInitialBalance = errors.New("initial balance must be zero or positive")
	// ErrVersionConflict indicates that the account was modified since it was loaded.
	ErrVersionConflict = errors.New("account version conflict")
)

// MoneyScale is the number of fractional digits stored for balances and amounts.
const MoneyScale = 4

// HasMoneyScale reports whether d can be stored without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// Account holds the balance of a single ledger account.
//
// Version is bumped by the store on every persisted mutation and is used as the
// compare-and-swap token for optimistic concurrency control.
type Account struct {
	ID             int64           `json:"id"`
	OwnerName      string          `json:"owner_name"`
	UserID         int64           `json:"user_id"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateAccountParams holds data nedeed for Account creation.
type CreateAccountParams struct {
	OwnerName      string
	UserID         int64
	InitialBalance decimal.Decimal
}
