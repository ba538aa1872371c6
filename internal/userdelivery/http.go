// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, username, fullName string) (domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns user handler.
func NewHandler(us Service) *Handler {
	return &Handler{
		service: us,
	}
}

type data struct {
	User domain.User `json:"user"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataUsers struct {
	Users []domain.User `json:"users"`
}
type responseUsers struct {
	Data dataUsers `json:"data,omitempty"`
}

func writeError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrUserNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type createRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	FullName string `json:"full_name" binding:"required"`
}

// Create handles http request to create user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	user, err := h.service.Create(ctx, req.Username, req.FullName)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{user}})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get user.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.ValidationMessage(err)})

		return
	}

	user, err := h.service.Get(ctx, req.ID)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{user}})
}

// List handles http request to list the user directory.
func (h *Handler) List(gctx *gin.Context) {
	users, err := h.service.List(gctx.Request.Context())
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseUsers{Data: dataUsers{users}})
}
