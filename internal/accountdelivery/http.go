// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, ownerName string, initialBalance decimal.Decimal, userID int64) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
	TotalBalanceForUser(ctx context.Context, userID int64) (decimal.Decimal, error)
	AccountsForUser(ctx context.Context, userID int64) ([]domain.Account, error)
	AccountsExcludingUser(ctx context.Context, userID int64) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
	Count    int64            `json:"count"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

type dataTotal struct {
	Total decimal.Decimal `json:"total"`
}
type responseTotal struct {
	Data dataTotal `json:"data,omitempty"`
}

func writeError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNegativeInitialBalance), errors.Is(err, domain.ErrInvalidAmount):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrUserNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type createRequest struct {
	OwnerName      string `json:"owner_name" binding:"required"`
	UserID         int64  `json:"user_id" binding:"required,min=1"`
	InitialBalance string `json:"initial_balance" binding:"required,decimal"`
}

// Create handles http request to open an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	initialBalance, err := decimal.NewFromString(req.InitialBalance)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

		return
	}

	account, err := h.service.Create(ctx, req.OwnerName, initialBalance, req.UserID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	account, err := h.service.Get(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// List handles http request to list all accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accounts, err := h.service.List(ctx)
	if err != nil {
		writeError(gctx, err)
		return
	}

	count, err := h.service.Count(ctx)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{Accounts: accounts, Count: count}})
}

// Total handles http request to sum balances of all accounts.
func (h *Handler) Total(gctx *gin.Context) {
	total, err := h.service.TotalBalance(gctx.Request.Context())
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTotal{Data: dataTotal{total}})
}

// ListForUser handles http request to list accounts of the user.
func (h *Handler) ListForUser(gctx *gin.Context) {
	h.listByUser(gctx, h.service.AccountsForUser)
}

// ListExcludingUser handles http request to list accounts the user can transfer to.
func (h *Handler) ListExcludingUser(gctx *gin.Context) {
	h.listByUser(gctx, h.service.AccountsExcludingUser)
}

func (h *Handler) listByUser(gctx *gin.Context, list func(context.Context, int64) ([]domain.Account, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	accounts, err := list(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{
		Data: dataAccounts{Accounts: accounts, Count: int64(len(accounts))},
	})
}

// TotalForUser handles http request to sum balances of the user's accounts.
func (h *Handler) TotalForUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	total, err := h.service.TotalBalanceForUser(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTotal{Data: dataTotal{total}})
}
