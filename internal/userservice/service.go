// Package userservice manages business logic layer of the user directory.
package userservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, username, fullName string) (domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New return user service struct to manage user bussines logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// Create registers a user in the directory.
func (s *Service) Create(ctx context.Context, username, fullName string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		l.Info().Msg("empty username")
		return domain.User{}, domain.ErrInvalidUsername
	}

	return s.repo.Create(ctx, username, fullName)
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// GetByUsername returns the user with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}
