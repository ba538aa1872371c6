package accountrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// RepoMem is an in-memory account store with the same version semantics as RepoPGS.
//
// Returned accounts are copies; callers never share state with the store.
type RepoMem struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]domain.Account
}

// NewRepoMem returns an empty account RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[int64]domain.Account),
	}
}

// Create creates the account and then returns it.
func (r *RepoMem) Create(_ context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if arg.InitialBalance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++

	a := domain.Account{
		ID:             r.nextID,
		OwnerName:      arg.OwnerName,
		UserID:         arg.UserID,
		Balance:        arg.InitialBalance,
		InitialBalance: arg.InitialBalance,
		CreatedAt:      time.Now().UTC(),
	}
	r.accounts[a.ID] = a

	return a, nil
}

// Get returns the account with the given id.
func (r *RepoMem) Get(_ context.Context, id int64) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// Save writes the account balance if the stored version still equals a.Version.
func (r *RepoMem) Save(_ context.Context, a domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[a.ID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if stored.Version != a.Version {
		return domain.Account{}, domain.ErrVersionConflict
	}

	if a.Balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	stored.Balance = a.Balance
	stored.Version++
	r.accounts[a.ID] = stored

	return stored, nil
}

// List returns all accounts ordered by id.
func (r *RepoMem) List(_ context.Context) ([]domain.Account, error) {
	return r.filter(func(domain.Account) bool { return true }), nil
}

// ListByUser returns the accounts owned by the given user.
func (r *RepoMem) ListByUser(_ context.Context, userID int64) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool { return a.UserID == userID }), nil
}

// ListExcludingUser returns the accounts that are not owned by the given user.
func (r *RepoMem) ListExcludingUser(_ context.Context, userID int64) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool { return a.UserID != userID }), nil
}

// Count returns the number of accounts.
func (r *RepoMem) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.accounts)), nil
}

// TotalBalance returns the sum of all account balances.
func (r *RepoMem) TotalBalance(_ context.Context) (decimal.Decimal, error) {
	return sumBalances(r.filter(func(domain.Account) bool { return true })), nil
}

// TotalBalanceByUser returns the sum of balances of the accounts owned by the given user.
func (r *RepoMem) TotalBalanceByUser(_ context.Context, userID int64) (decimal.Decimal, error) {
	return sumBalances(r.filter(func(a domain.Account) bool { return a.UserID == userID })), nil
}

func (r *RepoMem) filter(keep func(domain.Account) bool) []domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []domain.Account{}

	for _, a := range r.accounts {
		if keep(a) {
			items = append(items, a)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items
}

func sumBalances(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	return total
}
