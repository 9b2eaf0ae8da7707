package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/httpapi/handlers"
	"github.com/havenlisten/haven/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	// public wall read
	r.GET("/wall/messages", h.ListWallMessages)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// wall (JWT required)
	authGroup.POST("/wall/messages", h.PostWallMessage)
	authGroup.GET("/wall/messages/mine", h.GetMyWallMessage)
	authGroup.GET("/wall/messages/mine/history", h.GetMyModerationHistory)

	// chat (JWT required)
	authGroup.POST("/chat/sessions", h.CreateChatSession)
	authGroup.GET("/chat/sessions", h.ListChatSessions)
	authGroup.POST("/chat/sessions/:session_id/messages", h.PostChatTurn)
	authGroup.GET("/chat/sessions/:session_id/messages", h.ListChatMessages)
	authGroup.PUT("/chat/sessions/:session_id", h.RenameChatSession)
	authGroup.DELETE("/chat/sessions/:session_id", h.DeleteChatSession)

	return r
}
