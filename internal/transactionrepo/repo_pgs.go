// Package transactionrepo manages repository layer of the append-only transaction log.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/dbpkg"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const appendQuery = `
INSERT INTO
    transactions (account_id, amount, type, created_at)
VALUES
    ($1, $2, $3, COALESCE($4, now()))
RETURNING id, account_id, amount, type, created_at
`

// Append stores the transaction and then returns it with ID and CreatedAt set.
func (r *RepoPGS) Append(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	createdAt := sql.NullTime{Time: t.CreatedAt, Valid: !t.CreatedAt.IsZero()}

	row := r.db.QueryRowContext(ctx, appendQuery, t.AccountID, t.Amount, t.Type, createdAt)

	var got domain.Transaction

	err := row.Scan(
		&got.ID,
		&got.AccountID,
		&got.Amount,
		&got.Type,
		&got.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "transactions_account_id_fkey" {
			return domain.Transaction{}, domain.ErrAccountNotFound
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return got, nil
}

const listByAccountQuery = `
SELECT id, account_id, amount, type, created_at FROM transactions
WHERE account_id = $1
ORDER BY id
`

// ListByAccount returns the transactions of the account in insertion order.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return r.list(ctx, listByAccountQuery, accountID)
}

const listByAccountAndRangeQuery = `
SELECT id, account_id, amount, type, created_at FROM transactions
WHERE account_id = $1 AND created_at BETWEEN $2 AND $3
ORDER BY id
`

// ListByAccountAndRange returns the transactions of the account created within [start, end].
func (r *RepoPGS) ListByAccountAndRange(ctx context.Context, accountID int64, start, end time.Time) ([]domain.Transaction, error) {
	return r.list(ctx, listByAccountAndRangeQuery, accountID, start, end)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction

		if err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Amount,
			&t.Type,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
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
