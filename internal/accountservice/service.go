// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	ListExcludingUser(ctx context.Context, userID int64) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
	TotalBalanceByUser(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// UserRepo provides user lookup needed on account creation.
type UserRepo interface {
	Get(ctx context.Context, id int64) (domain.User, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo     Repo
	userRepo UserRepo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, ur UserRepo) *Service {
	return &Service{
		repo:     ar,
		userRepo: ur,
	}
}

// Create opens an account with the given initial balance for the given user.
func (s *Service) Create(ctx context.Context, ownerName string, initialBalance decimal.Decimal, userID int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if initialBalance.IsNegative() {
		l.Info().Str("initial_balance", initialBalance.String()).Msg("account rejected")
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	if !domain.HasMoneyScale(initialBalance) {
		l.Info().Str("initial_balance", initialBalance.String()).Msg("account rejected")
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return domain.Account{}, err
	}

	return s.repo.Create(ctx, domain.CreateAccountParams{
		OwnerName:      ownerName,
		UserID:         userID,
		InitialBalance: initialBalance,
	})
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// Count returns the number of accounts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// TotalBalance returns the sum of balances over all accounts.
func (s *Service) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.TotalBalance(ctx)
}

// TotalBalanceForUser returns the sum of balances of the user's accounts.
func (s *Service) TotalBalanceForUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.TotalBalanceByUser(ctx, userID)
}

// AccountsForUser returns the accounts owned by the user.
func (s *Service) AccountsForUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return s.repo.ListByUser(ctx, userID)
}

// AccountsExcludingUser returns the accounts the user may transfer to.
func (s *Service) AccountsExcludingUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return s.repo.ListExcludingUser(ctx, userID)
}
