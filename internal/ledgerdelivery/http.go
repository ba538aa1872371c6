// Package ledgerdelivery manages delivery layer of balance mutations.
package ledgerdelivery

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

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error)
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal) (domain.TransferResult, error)
}

// Checker reports reconciliation state of an account.
type Checker interface {
	Check(ctx context.Context, accountID int64) (domain.ReconciliationReport, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
	checker Checker
}

// NewHandler returns ledger handler.
func NewHandler(ls Service, c Checker) Handler {
	return Handler{
		service: ls,
		checker: c,
	}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataTransfer struct {
	Transfer domain.TransferResult `json:"transfer"`
}
type responseTransfer struct {
	Data dataTransfer `json:"data,omitempty"`
}

type dataReport struct {
	Report domain.ReconciliationReport `json:"report"`
}
type responseReport struct {
	Data dataReport `json:"data,omitempty"`
}

// writeError maps ledger errors to status codes. Transfer failures expose only
// their kind, never the storage cause.
func writeError(gctx *gin.Context, err error) {
	var terr *domain.TransferError
	if errors.As(err, &terr) {
		if errors.Is(terr.Kind, domain.ErrTransferConflict) {
			gctx.JSON(http.StatusConflict, web.Error(terr.Kind))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(terr.Kind))

		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrSameAccount):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrSourceNotFound),
		errors.Is(err, domain.ErrTargetNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInsufficientFunds):
		gctx.JSON(http.StatusUnprocessableEntity, web.Error(err))
	case errors.Is(err, domain.ErrVersionConflict):
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
}

func bindMutation(gctx *gin.Context) (int64, decimal.Decimal, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return 0, decimal.Zero, false
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return 0, decimal.Zero, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

		return 0, decimal.Zero, false
	}

	return uri.ID, amount, true
}

// Credit handles http request to credit an account.
func (h *Handler) Credit(gctx *gin.Context) {
	id, amount, ok := bindMutation(gctx)
	if !ok {
		return
	}

	account, err := h.service.Credit(gctx.Request.Context(), id, amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Debit handles http request to debit an account.
func (h *Handler) Debit(gctx *gin.Context) {
	id, amount, ok := bindMutation(gctx)
	if !ok {
		return
	}

	account, err := h.service.Debit(gctx.Request.Context(), id, amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type transferRequest struct {
	SourceAccountID int64  `json:"source_account_id" binding:"required,min=1"`
	TargetAccountID int64  `json:"target_account_id" binding:"required,min=1"`
	Amount          string `json:"amount" binding:"required,decimal"`
}

// Transfer handles http request to move funds between accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

		return
	}

	result, err := h.service.Transfer(ctx, req.SourceAccountID, req.TargetAccountID, amount)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransfer{Data: dataTransfer{result}})
}

// Reconciliation handles http request to check an account against its history.
func (h *Handler) Reconciliation(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	report, err := h.checker.Check(ctx, uri.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseReport{Data: dataReport{report}})
}
