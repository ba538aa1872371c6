// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/swift-ledger/cmd/httpserver"
	"github.com/go-petr/swift-ledger/internal/accountrepo"
	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/internal/middleware"
	"github.com/go-petr/swift-ledger/internal/userrepo"
	"github.com/go-petr/swift-ledger/pkg/configpkg"
	"github.com/go-petr/swift-ledger/pkg/dbpkg"
	"github.com/go-petr/swift-ledger/pkg/randompkg"
)

// LoadConfig loads the application config from the given configs directory.
func LoadConfig(t *testing.T, path string) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load(path)
	if err != nil {
		t.Fatalf("configpkg.Load(%q) returned error: %v", path, err)
	}

	return config
}

// SetupServer returns Postgres backed test server that cleans up database after the test.
func SetupServer(t *testing.T, configPath string) *httpserver.Server {
	t.Helper()

	config := LoadConfig(t, configPath)

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, config)

	server, err := httpserver.New(db, nil, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, nil, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

func open(t *testing.T, config configpkg.Config) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource, dbpkg.PoolConfig{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: config.DBConnMaxLifetime,
	})
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	return db
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, config configpkg.Config) *sql.DB {
	t.Helper()

	db := open(t, config)

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, config configpkg.Config) *sql.Tx {
	t.Helper()

	db := open(t, config)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}

// SeedUser creates random User.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	username := randompkg.Owner()

	user, err := userrepo.NewRepoPGS(db).Create(context.Background(), username, randompkg.String(10))
	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %q) returned error: %v", username, err)
	}

	return user
}

// SeedAccount creates an account of the user with the given opening balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, userID int64, balance string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		OwnerName:      randompkg.Owner(),
		UserID:         userID,
		InitialBalance: decimal.RequireFromString(balance),
	}

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}
