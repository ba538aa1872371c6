// Package ledgerservice manages balance mutations of accounts: credit, debit and transfer.
package ledgerservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// AccountRepo provides account access needed by ledger service layer.
//
// Save must persist the account only if the stored version still equals
// the version of the given account and report domain.ErrVersionConflict otherwise.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type AccountRepo interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
	Save(ctx context.Context, a domain.Account) (domain.Account, error)
}

// TransactionRepo provides the append-only transaction log.
type TransactionRepo interface {
	Append(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
}

// Recorder keeps incidents that need reconciliation.
type Recorder interface {
	Record(ctx context.Context, inc domain.Incident) error
}

// Service facilitates ledger service layer logic.
type Service struct {
	accountRepo     AccountRepo
	transactionRepo TransactionRepo
	recorder        Recorder
}

// New returns ledger service struct to manage balance mutations.
func New(ar AccountRepo, tr TransactionRepo, rec Recorder) *Service {
	return &Service{
		accountRepo:     ar,
		transactionRepo: tr,
		recorder:        rec,
	}
}

// Credit adds amount to the account balance and records a CREDIT transaction.
func (s *Service) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() || !domain.HasMoneyScale(amount) {
		l.Info().Str("amount", amount.String()).Msg("credit rejected")
		return domain.Account{}, domain.ErrInvalidAmount
	}

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	account.Balance = account.Balance.Add(amount)

	return s.apply(ctx, domain.OperationCredit, account, domain.Transaction{
		AccountID: accountID,
		Amount:    amount,
		Type:      domain.TransactionCredit,
	})
}

// Debit subtracts amount from the account balance and records a DEBIT transaction
// with a negative amount.
func (s *Service) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() || !domain.HasMoneyScale(amount) {
		l.Info().Str("amount", amount.String()).Msg("debit rejected")
		return domain.Account{}, domain.ErrInvalidAmount
	}

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	if account.Balance.LessThan(amount) {
		l.Info().Int64("account_id", accountID).Str("amount", amount.String()).Msg("debit rejected")
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(amount)

	return s.apply(ctx, domain.OperationDebit, account, domain.Transaction{
		AccountID: accountID,
		Amount:    amount.Neg(),
		Type:      domain.TransactionDebit,
	})
}

func (s *Service) apply(ctx context.Context, op string, account domain.Account, t domain.Transaction) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	saved, err := s.accountRepo.Save(ctx, account)
	if err != nil {
		return domain.Account{}, err
	}

	if _, err := s.transactionRepo.Append(ctx, t); err != nil {
		l.Error().Err(err).Int64("account_id", account.ID).Str("operation", op).Msg("balance saved without transaction")

		s.record(ctx, domain.Incident{
			Operation:       op,
			Stage:           domain.StageAppendSource,
			SourceAccountID: account.ID,
			Amount:          t.Amount.Abs(),
			Cause:           err.Error(),
		})

		return domain.Account{}, err
	}

	return saved, nil
}

// Transfer moves amount from the source account to the target account.
//
// Validation failures are returned as plain domain errors and change nothing.
// Failures after validation are returned as *domain.TransferError. The source
// balance is written before the target one and is not rolled back if a later
// step fails; such transfers are recorded as reconciliation incidents.
func (s *Service) Transfer(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() || !domain.HasMoneyScale(amount) {
		l.Info().Str("amount", amount.String()).Msg("transfer rejected")
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	if sourceID == targetID {
		l.Info().Int64("account_id", sourceID).Msg("transfer rejected")
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	source, err := s.accountRepo.Get(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.TransferResult{}, domain.ErrSourceNotFound
		}

		return domain.TransferResult{}, s.fail(ctx, domain.StageLoadSource, false, err)
	}

	target, err := s.accountRepo.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.TransferResult{}, domain.ErrTargetNotFound
		}

		return domain.TransferResult{}, s.fail(ctx, domain.StageLoadTarget, false, err)
	}

	if source.Balance.LessThan(amount) {
		l.Info().Int64("account_id", sourceID).Str("amount", amount.String()).Msg("transfer rejected")
		return domain.TransferResult{}, domain.ErrInsufficientFunds
	}

	source.Balance = source.Balance.Sub(amount)
	target.Balance = target.Balance.Add(amount)

	incident := domain.Incident{
		Operation:       domain.OperationTransfer,
		SourceAccountID: sourceID,
		TargetAccountID: targetID,
		Amount:          amount,
	}

	var result domain.TransferResult

	result.Source, err = s.accountRepo.Save(ctx, source)
	if err != nil {
		return domain.TransferResult{}, s.fail(ctx, domain.StageSaveSource, false, err)
	}

	result.Target, err = s.accountRepo.Save(ctx, target)
	if err != nil {
		return domain.TransferResult{}, s.failPersisted(ctx, domain.StageSaveTarget, incident, err)
	}

	result.SourceTransfer, err = s.transactionRepo.Append(ctx, domain.Transaction{
		AccountID: sourceID,
		Amount:    amount.Neg(),
		Type:      domain.TransactionTransferOut,
	})
	if err != nil {
		return domain.TransferResult{}, s.failPersisted(ctx, domain.StageAppendSource, incident, err)
	}

	result.TargetTransfer, err = s.transactionRepo.Append(ctx, domain.Transaction{
		AccountID: targetID,
		Amount:    amount,
		Type:      domain.TransactionTransferIn,
	})
	if err != nil {
		return domain.TransferResult{}, s.failPersisted(ctx, domain.StageAppendTarget, incident, err)
	}

	return result, nil
}

// fail classifies err raised at stage into a *domain.TransferError.
func (s *Service) fail(ctx context.Context, stage domain.TransferStage, persisted bool, err error) error {
	l := zerolog.Ctx(ctx)

	kind := domain.ErrTransferFailed
	if errors.Is(err, domain.ErrVersionConflict) {
		kind = domain.ErrTransferConflict
	}

	event := l.Error()
	if kind == domain.ErrTransferConflict {
		event = l.Warn()
	}

	event.Err(err).
		Str("stage", string(stage)).
		Bool("source_persisted", persisted).
		Msg("transfer aborted")

	return &domain.TransferError{
		Kind:            kind,
		Stage:           stage,
		SourcePersisted: persisted,
		Cause:           err,
	}
}

// failPersisted is fail for stages reached after the source balance was written.
func (s *Service) failPersisted(ctx context.Context, stage domain.TransferStage, inc domain.Incident, err error) error {
	inc.Stage = stage
	inc.Cause = err.Error()
	s.record(ctx, inc)

	return s.fail(ctx, stage, true, err)
}

func (s *Service) record(ctx context.Context, inc domain.Incident) {
	l := zerolog.Ctx(ctx)

	inc.ID = uuid.New()
	inc.CreatedAt = time.Now().UTC()

	if err := s.recorder.Record(ctx, inc); err != nil {
		l.Error().Err(err).Str("incident_id", inc.ID.String()).Msg("cannot record reconciliation incident")
	}
}
