// Package transactionservice manages read access to the transaction history.
package transactionservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
	ListByAccountAndRange(ctx context.Context, accountID int64, start, end time.Time) ([]domain.Transaction, error)
}

// AccountRepo is used to tell a missing account from an empty history.
type AccountRepo interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo        Repo
	accountRepo AccountRepo
}

// New returns transaction service.
func New(tr Repo, ar AccountRepo) *Service {
	return &Service{
		repo:        tr,
		accountRepo: ar,
	}
}

// ListByAccount returns the history of the account in insertion order.
func (s *Service) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	if _, err := s.accountRepo.Get(ctx, accountID); err != nil {
		return nil, err
	}

	return s.repo.ListByAccount(ctx, accountID)
}

// ListByAccountAndRange returns the transactions of the account created within [start, end].
func (s *Service) ListByAccountAndRange(ctx context.Context, accountID int64, start, end time.Time) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if end.Before(start) {
		l.Info().Time("start", start).Time("end", end).Msg("invalid range")
		return nil, domain.ErrInvalidRange
	}

	if _, err := s.accountRepo.Get(ctx, accountID); err != nil {
		return nil, err
	}

	return s.repo.ListByAccountAndRange(ctx, accountID, start, end)
}
