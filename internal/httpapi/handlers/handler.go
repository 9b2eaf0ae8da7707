package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/havenlisten/haven/internal/chat"
	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/config"
	"github.com/havenlisten/haven/internal/httpapi/middleware"
	"github.com/havenlisten/haven/internal/wall"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Logger  *zap.Logger
	WallSvc *wall.Service
	ChatSvc *chat.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, logger *zap.Logger, wallSvc *wall.Service, chatSvc *chat.Service) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Logger:  logger,
		WallSvc: wallSvc,
		ChatSvc: chatSvc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// failFromErr maps the domain error taxonomy onto HTTP statuses.
func (h *Handler) failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		common.Fail(c, http.StatusBadRequest, 10001, err.Error())
	case errors.Is(err, common.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40301, "you do not own this resource")
	case errors.Is(err, common.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, common.ErrExternal):
		common.Fail(c, http.StatusBadGateway, 50201, "external service unavailable, please try again")
	default:
		h.Logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
