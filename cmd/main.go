// Package main runs the ledger API server.
package main

import (
	"context"
	"database/sql"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/swift-ledger/cmd/httpserver"
	"github.com/go-petr/swift-ledger/internal/middleware"
	"github.com/go-petr/swift-ledger/pkg/configpkg"
	"github.com/go-petr/swift-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var db *sql.DB

	if config.Storage == configpkg.StoragePostgres {
		db, err = dbpkg.Setup(config.DBDriver, config.DBSource, dbpkg.PoolConfig{
			MaxOpenConns:    config.DBMaxOpenConns,
			MaxIdleConns:    config.DBMaxIdleConns,
			ConnMaxLifetime: config.DBConnMaxLifetime,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer db.Close()
	} else {
		logger.Warn().Msg("using in-memory storage")
	}

	var rdb redis.Cmdable

	if config.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}
		defer client.Close()

		rdb = client
	}

	server, err := httpserver.New(db, rdb, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Str("storage", config.Storage).Msg("LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
