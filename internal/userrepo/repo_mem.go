package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// RepoMem is an in-memory user directory.
type RepoMem struct {
	mu     sync.RWMutex
	nextID int64
	users  []domain.User
}

// NewRepoMem returns an empty user RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{}
}

// Create creates the user and then returns it.
func (r *RepoMem) Create(_ context.Context, username, fullName string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return domain.User{}, domain.ErrUsernameAlreadyExists
		}
	}

	r.nextID++

	u := domain.User{
		ID:        r.nextID,
		Username:  username,
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}
	r.users = append(r.users, u)

	return u, nil
}

// Get returns the user with the given id.
func (r *RepoMem) Get(_ context.Context, id int64) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

// GetByUsername returns the user with the given username.
func (r *RepoMem) GetByUsername(_ context.Context, username string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

// List returns all users.
func (r *RepoMem) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.User, len(r.users))
	copy(items, r.users)

	return items, nil
}

func (r *RepoMem) find(match func(domain.User) bool) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}

	return domain.User{}, domain.ErrUserNotFound
}
