package transactionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// RepoMem is an in-memory append-only transaction log.
type RepoMem struct {
	mu     sync.RWMutex
	nextID int64
	items  []domain.Transaction
}

// NewRepoMem returns an empty transaction RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{}
}

// Append stores the transaction and then returns it with ID and CreatedAt set.
func (r *RepoMem) Append(_ context.Context, t domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	r.items = append(r.items, t)

	return t, nil
}

// ListByAccount returns the transactions of the account in insertion order.
func (r *RepoMem) ListByAccount(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool {
		return t.AccountID == accountID
	}), nil
}

// ListByAccountAndRange returns the transactions of the account created within [start, end].
func (r *RepoMem) ListByAccountAndRange(_ context.Context, accountID int64, start, end time.Time) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool {
		return t.AccountID == accountID && !t.CreatedAt.Before(start) && !t.CreatedAt.After(end)
	}), nil
}

func (r *RepoMem) filter(keep func(domain.Transaction) bool) []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []domain.Transaction{}

	for _, t := range r.items {
		if keep(t) {
			items = append(items, t)
		}
	}

	return items
}
