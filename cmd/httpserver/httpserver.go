// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/accountdelivery"
	"github.com/go-petr/swift-ledger/internal/accountrepo"
	"github.com/go-petr/swift-ledger/internal/accountservice"
	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/internal/incidentdelivery"
	"github.com/go-petr/swift-ledger/internal/ledgerdelivery"
	"github.com/go-petr/swift-ledger/internal/ledgerservice"
	"github.com/go-petr/swift-ledger/internal/middleware"
	"github.com/go-petr/swift-ledger/internal/reconciliation"
	"github.com/go-petr/swift-ledger/internal/transactiondelivery"
	"github.com/go-petr/swift-ledger/internal/transactionrepo"
	"github.com/go-petr/swift-ledger/internal/transactionservice"
	"github.com/go-petr/swift-ledger/internal/userdelivery"
	"github.com/go-petr/swift-ledger/internal/userrepo"
	"github.com/go-petr/swift-ledger/internal/userservice"
	"github.com/go-petr/swift-ledger/pkg/configpkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

// Server holds storage connections, handlers router and configuration.
//
// DB is nil when the server runs on in-memory storage and Redis is nil when
// incidents are queued in memory.
type Server struct {
	DB     *sql.DB
	Redis  redis.Cmdable
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

type accountStore interface {
	accountservice.Repo
	ledgerservice.AccountRepo
}

type transactionStore interface {
	transactionservice.Repo
	ledgerservice.TransactionRepo
}

type incidentQueue interface {
	ledgerservice.Recorder
	incidentdelivery.Queue
}

// New creates Server type with instantiated domains and routes.
//
// A nil conn selects in-memory repositories, a nil rdb selects the in-memory
// incident queue.
func New(conn *sql.DB, rdb redis.Cmdable, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	var (
		accountRepo     accountStore
		transactionRepo transactionStore
		userRepo        userservice.Repo
		queue           incidentQueue
	)

	if conn != nil {
		accountRepo = accountrepo.NewRepoPGS(conn)
		transactionRepo = transactionrepo.NewRepoPGS(conn)
		userRepo = userrepo.NewRepoPGS(conn)
	} else {
		accountRepo = accountrepo.NewRepoMem()
		transactionRepo = transactionrepo.NewRepoMem()
		userRepo = userrepo.NewRepoMem()
	}

	if rdb != nil {
		queue = reconciliation.NewRedisQueue(rdb, config.ReconciliationQueue)
	} else {
		queue = reconciliation.NewMemQueue()
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo, userRepo)
	ledgerService := ledgerservice.New(accountRepo, transactionRepo, queue)
	transactionService := transactionservice.New(transactionRepo, accountRepo)
	checker := reconciliation.NewChecker(accountRepo, transactionRepo)

	if err := seedUsers(logger.WithContext(context.Background()), userService, config.SeedUsers); err != nil {
		return nil, err
	}

	userHandler := userdelivery.NewHandler(userService)
	accountHandler := accountdelivery.NewHandler(accountService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService, checker)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	incidentHandler := incidentdelivery.NewHandler(queue)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("decimal", web.ValidDecimal); err != nil {
			return nil, errors.New("cannot register decimal validator")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/users", userHandler.Create)
	engine.GET("/users", userHandler.List)
	engine.GET("/users/:id", userHandler.Get)
	engine.GET("/users/:id/accounts", accountHandler.ListForUser)
	engine.GET("/users/:id/accounts/others", accountHandler.ListExcludingUser)
	engine.GET("/users/:id/total", accountHandler.TotalForUser)

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/total", accountHandler.Total)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.POST("/accounts/:id/credit", ledgerHandler.Credit)
	engine.POST("/accounts/:id/debit", ledgerHandler.Debit)
	engine.GET("/accounts/:id/transactions", transactionHandler.List)
	engine.GET("/accounts/:id/reconciliation", ledgerHandler.Reconciliation)

	engine.POST("/transfers", ledgerHandler.Transfer)

	engine.GET("/incidents", incidentHandler.List)
	engine.DELETE("/incidents/:id", incidentHandler.Ack)

	server := &Server{
		DB:     conn,
		Redis:  rdb,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

type userCreator interface {
	Create(ctx context.Context, username, fullName string) (domain.User, error)
}

// seedUsers registers the configured usernames, skipping those that already exist.
func seedUsers(ctx context.Context, us userCreator, usernames []string) error {
	l := zerolog.Ctx(ctx)

	for _, username := range usernames {
		if username == "" {
			continue
		}

		u, err := us.Create(ctx, username, username)

		switch {
		case err == nil:
			l.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("seeded user")
		case errors.Is(err, domain.ErrUsernameAlreadyExists):
			continue
		default:
			return fmt.Errorf("seed user %q: %w", username, err)
		}
	}

	return nil
}
