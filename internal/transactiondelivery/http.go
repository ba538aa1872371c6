// Package transactiondelivery manages delivery layer of the transaction history.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
	ListByAccountAndRange(ctx context.Context, accountID int64, start, end time.Time) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
	now     func() time.Time
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{
		service: ts,
		now:     time.Now,
	}
}

type data struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type uriRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type rangeRequest struct {
	Start time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
}

// List handles http request to list transactions of an account.
//
// Without start and end the whole history is returned. A missing start means
// the beginning of the history and a missing end means now.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	var req rangeRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidRange))

		return
	}

	var (
		txs []domain.Transaction
		err error
	)

	if req.Start.IsZero() && req.End.IsZero() {
		txs, err = h.service.ListByAccount(ctx, uri.ID)
	} else {
		end := req.End
		if end.IsZero() {
			end = h.now().UTC()
		}

		txs, err = h.service.ListByAccountAndRange(ctx, uri.ID, req.Start, end)
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRange):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txs}})
}
