package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenlisten/haven/internal/common"
)

type createSessionReq struct {
	IntakeAnswers []string `json:"intake_answers"`
}

func (h *Handler) CreateChatSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createSessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	sess, greeting, err := h.ChatSvc.CreateSession(c.Request.Context(), uid, req.IntakeAnswers)
	if err != nil {
		h.failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"session_id": sess.SessionID,
		"greeting":   greeting,
	})
}

func (h *Handler) ListChatSessions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), uid)
	if err != nil {
		h.failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"sessions": sessions})
}

type postTurnReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) PostChatTurn(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")

	var req postTurnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "message is required")
		return
	}

	reply, err := h.ChatSvc.PostTurn(c.Request.Context(), uid, sessionID, req.Message)
	if err != nil {
		h.failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"session_id": sessionID,
		"reply":      reply,
	})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	msgs, err := h.ChatSvc.GetMessages(c.Request.Context(), uid, c.Param("session_id"))
	if err != nil {
		h.failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

type renameSessionReq struct {
	Title string `json:"title" binding:"required,max=120"`
}

func (h *Handler) RenameChatSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req renameSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "title is required")
		return
	}

	if err := h.ChatSvc.RenameSession(c.Request.Context(), uid, c.Param("session_id"), req.Title); err != nil {
		h.failFromErr(c, err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) DeleteChatSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.ChatSvc.DeleteSession(c.Request.Context(), uid, c.Param("session_id")); err != nil {
		h.failFromErr(c, err)
		return
	}
	common.OK(c, nil)
}
