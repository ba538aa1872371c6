package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrIncidentNotFound indicates that the reconciliation incident is not queued.
var ErrIncidentNotFound = errors.New("incident not found")

// Ledger operations that can leave an incident behind.
const (
	OperationCredit   = "credit"
	OperationDebit    = "debit"
	OperationTransfer = "transfer"
)

// Incident describes a ledger operation whose balance write committed
// but whose remaining steps failed.
//
// For credit and debit only SourceAccountID is set.
type Incident struct {
	ID              uuid.UUID       `json:"id"`
	Operation       string          `json:"operation"`
	Stage           TransferStage   `json:"stage"`
	SourceAccountID int64           `json:"source_account_id"`
	TargetAccountID int64           `json:"target_account_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Cause           string          `json:"cause"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ReconciliationReport compares an account balance with its transaction history.
type ReconciliationReport struct {
	AccountID int64           `json:"account_id"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
	Drift     decimal.Decimal `json:"drift"`
	Balanced  bool            `json:"balanced"`
}
