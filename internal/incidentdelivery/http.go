// Package incidentdelivery exposes the reconciliation incident queue over http.
package incidentdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

// Queue provides incident queue interface needed by incident delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package incidentdelivery
type Queue interface {
	Pending(ctx context.Context) ([]domain.Incident, error)
	Ack(ctx context.Context, id uuid.UUID) error
}

// Handler facilitates incident delivery layer logic.
type Handler struct {
	queue Queue
}

// NewHandler returns incident handler.
func NewHandler(q Queue) Handler {
	return Handler{queue: q}
}

type data struct {
	Incidents []domain.Incident `json:"incidents"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// List handles http request to list unresolved incidents.
func (h *Handler) List(gctx *gin.Context) {
	incidents, err := h.queue.Pending(gctx.Request.Context())
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{incidents}})
}

type idRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Ack handles http request to mark an incident as resolved.
func (h *Handler) Ack(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	err := h.queue.Ack(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	l.Info().Str("incident_id", req.ID).Msg("incident acknowledged")

	gctx.Status(http.StatusNoContent)
}
