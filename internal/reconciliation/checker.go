package reconciliation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// AccountRepo provides account access needed by Checker.
//
//go:generate mockgen -source checker.go -destination checker_mock.go -package reconciliation
type AccountRepo interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
}

// TransactionRepo provides transaction history needed by Checker.
type TransactionRepo interface {
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// Checker verifies that account balances match their transaction history.
type Checker struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
}

// NewChecker returns Checker.
func NewChecker(ar AccountRepo, tr TransactionRepo) *Checker {
	return &Checker{
		accountRepo:     ar,
		transactionRepo: tr,
	}
}

// Check reports whether the account balance equals its initial balance plus
// the signed sum of its transactions.
//
// The account and its history are read separately, so an operation caught
// between its balance write and its append looks like drift. A drifted account
// is read once more before it is reported. The report is authoritative only for
// an account with no mutation in flight.
func (c *Checker) Check(ctx context.Context, accountID int64) (domain.ReconciliationReport, error) {
	l := zerolog.Ctx(ctx)

	report, err := c.check(ctx, accountID)
	if err != nil || report.Balanced {
		return report, err
	}

	report, err = c.check(ctx, accountID)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}

	if !report.Balanced {
		l.Warn().
			Int64("account_id", accountID).
			Str("expected", report.Expected.String()).
			Str("actual", report.Actual.String()).
			Msg("account balance drifted from transaction history")
	}

	return report, nil
}

func (c *Checker) check(ctx context.Context, accountID int64) (domain.ReconciliationReport, error) {
	account, err := c.accountRepo.Get(ctx, accountID)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}

	txs, err := c.transactionRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}

	expected := account.InitialBalance.Add(domain.SumAmounts(txs))
	drift := account.Balance.Sub(expected)

	return domain.ReconciliationReport{
		AccountID: accountID,
		Expected:  expected,
		Actual:    account.Balance,
		Drift:     drift,
		Balanced:  drift.IsZero(),
	}, nil
}
