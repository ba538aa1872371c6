//go:build integration

package accountrepo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/swift-ledger/internal/accountrepo"
	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/internal/integrationtest"
)

func TestSaveIntegration(t *testing.T) {
	tx := integrationtest.SetupTX(t, integrationtest.LoadConfig(t, "../../configs"))
	ctx := context.Background()

	user := integrationtest.SeedUser(t, tx)
	a := integrationtest.SeedAccount(t, tx, user.ID, "100")

	repo := accountrepo.NewRepoPGS(tx)

	a.Balance = decimal.NewFromInt(70)

	saved, err := repo.Save(ctx, a)
	require.NoError(t, err)
	require.Equal(t, a.Version+1, saved.Version)

	_, err = repo.Save(ctx, a)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	saved.Balance = decimal.NewFromInt(-1)
	_, err = repo.Save(ctx, saved)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}
