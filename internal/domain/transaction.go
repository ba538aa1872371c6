package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange indicates that the end of a time range precedes its start.
var ErrInvalidRange = errors.New("invalid time range")

// TransactionType tells which ledger operation produced a transaction.
type TransactionType string

// Supported transaction types.
const (
	TransactionCredit      TransactionType = "CREDIT"
	TransactionDebit       TransactionType = "DEBIT"
	TransactionTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTransferIn  TransactionType = "TRANSFER_IN"
)

// Transaction is an immutable record of one balance change of one account.
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"` // negative for outbound value
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// SumAmounts returns the signed net effect of the given transactions.
func SumAmounts(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}

	return sum
}
