package reconciliation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/swift-ledger/internal/domain"
)

func TestMemQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemQueue()

	first, second := randomIncident(), randomIncident()

	require.NoError(t, q.Record(ctx, first))
	require.NoError(t, q.Record(ctx, second))

	got, err := q.Pending(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Incident{first, second}, got)

	require.ErrorIs(t, q.Ack(ctx, uuid.New()), domain.ErrIncidentNotFound)
	require.NoError(t, q.Ack(ctx, first.ID))

	got, err = q.Pending(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Incident{second}, got)
}
