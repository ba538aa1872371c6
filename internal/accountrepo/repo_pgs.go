// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/dbpkg"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerName,
		&a.UserID,
		&a.Balance,
		&a.InitialBalance,
		&a.Version,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (owner_name, user_id, balance, initial_balance)
VALUES
    ($1, $2, $3, $3)
RETURNING id, owner_name, user_id, balance, initial_balance, version, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.OwnerName, arg.UserID, arg.InitialBalance)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_user_id_fkey":
				return domain.Account{}, domain.ErrUserNotFound
			case "accounts_initial_balance_check", "accounts_balance_check":
				return domain.Account{}, domain.ErrNegativeInitialBalance
			}
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, owner_name, user_id, balance, initial_balance, version, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const saveQuery = `
UPDATE accounts
SET balance = $1, version = version + 1
WHERE id = $2 AND version = $3
RETURNING id, owner_name, user_id, balance, initial_balance, version, created_at
`

const existsQuery = `
SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)
`

// Save writes the account balance if the stored version still equals a.Version.
//
// On success the returned account carries the incremented version. A version
// mismatch is reported as domain.ErrVersionConflict and is never retried here.
func (r *RepoPGS) Save(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	saved, err := scanAccount(r.db.QueryRowContext(ctx, saveQuery, a.Balance, a.ID, a.Version))
	if err == nil {
		return saved, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRowContext(ctx, existsQuery, a.ID).Scan(&exists); err != nil {
			l.Error().Err(err).Send()
			return domain.Account{}, errorspkg.ErrInternal
		}

		if !exists {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Warn().Int64("account_id", a.ID).Int64("version", a.Version).Msg("stale account version")

		return domain.Account{}, domain.ErrVersionConflict
	}

	l.Error().Err(err).Send()

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	return domain.Account{}, errorspkg.ErrInternal
}

const listQuery = `
SELECT
	id, owner_name, user_id, balance, initial_balance, version, created_at
FROM accounts
ORDER BY id
`

// List returns all accounts.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Account, error) {
	return r.list(ctx, listQuery)
}

const listByUserQuery = `
SELECT
	id, owner_name, user_id, balance, initial_balance, version, created_at
FROM accounts
WHERE user_id = $1
ORDER BY id
`

// ListByUser returns the accounts owned by the given user.
func (r *RepoPGS) ListByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return r.list(ctx, listByUserQuery, userID)
}

const listExcludingUserQuery = `
SELECT
	id, owner_name, user_id, balance, initial_balance, version, created_at
FROM accounts
WHERE user_id <> $1
ORDER BY id
`

// ListExcludingUser returns the accounts that are not owned by the given user.
func (r *RepoPGS) ListExcludingUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return r.list(ctx, listExcludingUserQuery, userID)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const countQuery = `
SELECT count(*) FROM accounts
`

// Count returns the number of accounts.
func (r *RepoPGS) Count(ctx context.Context) (int64, error) {
	l := zerolog.Ctx(ctx)

	var n int64
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return n, nil
}

const totalBalanceQuery = `
SELECT COALESCE(SUM(balance), 0) FROM accounts
`

// TotalBalance returns the sum of all account balances.
func (r *RepoPGS) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, totalBalanceQuery)
}

const totalBalanceByUserQuery = `
SELECT COALESCE(SUM(balance), 0) FROM accounts
WHERE user_id = $1
`

// TotalBalanceByUser returns the sum of balances of the accounts owned by the given user.
func (r *RepoPGS) TotalBalanceByUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return r.sum(ctx, totalBalanceByUserQuery, userID)
}

func (r *RepoPGS) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		l.Error().Err(err).Send()
		return decimal.Zero, errorspkg.ErrInternal
	}

	return total, nil
}
