// Package userrepo manages repository layer of the user directory.
package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/dbpkg"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO users (
    username,
    full_name
) VALUES (
    $1, $2
) RETURNING id, username, full_name, created_at
`

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, username, fullName string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := r.db.QueryRowContext(ctx, createQuery, username, fullName).Scan(
		&u.ID,
		&u.Username,
		&u.FullName,
		&u.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.User{}, domain.ErrUsernameAlreadyExists
		}

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}

const getQuery = `
SELECT id, username, full_name, created_at FROM users
WHERE id = $1
`

// Get returns the user with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.User, error) {
	return r.get(ctx, getQuery, id)
}

const getByUsernameQuery = `
SELECT id, username, full_name, created_at FROM users
WHERE username = $1
`

// GetByUsername returns the user with the given username.
func (r *RepoPGS) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.get(ctx, getByUsernameQuery, username)
}

func (r *RepoPGS) get(ctx context.Context, query string, arg any) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.FullName,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}

const listQuery = `
SELECT id, username, full_name, created_at FROM users
ORDER BY id
`

// List returns all users.
func (r *RepoPGS) List(ctx context.Context) ([]domain.User, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.User{}

	for rows.Next() {
		var u domain.User

		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.FullName,
			&u.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, u)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
