package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/wall"
)

type postWallMessageReq struct {
	Message string `json:"message" binding:"required"`
}

// PostWallMessage runs the submission through the moderation pipeline and
// replaces the caller's wall slot with the outcome. A rejection is a
// normal 200 outcome with the reason attached, not an HTTP error.
func (h *Handler) PostWallMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req postWallMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "message is required")
		return
	}

	sub, err := h.WallSvc.Submit(c.Request.Context(), uid, req.Message)
	if err != nil {
		h.failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"status": sub.Status,
		"reason": sub.Reason,
	})
}

// ListWallMessages is the public read of every approved message.
func (h *Handler) ListWallMessages(c *gin.Context) {
	texts, err := h.WallSvc.ListApproved(c.Request.Context())
	if err != nil {
		h.failFromErr(c, err)
		return
	}
	if texts == nil {
		texts = []string{}
	}
	common.OK(c, gin.H{"messages": texts})
}

// GetMyModerationHistory serves the caller's recent decisions from the
// append-only audit trail.
func (h *Handler) GetMyModerationHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	audits, err := h.WallSvc.ListMyAudits(c.Request.Context(), uid, limit)
	if err != nil {
		h.failFromErr(c, err)
		return
	}
	if audits == nil {
		audits = []wall.ModerationAudit{}
	}
	common.OK(c, gin.H{"decisions": audits})
}

func (h *Handler) GetMyWallMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sub, err := h.WallSvc.GetMine(c.Request.Context(), uid)
	if err != nil {
		h.failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"text":       sub.Text,
		"status":     sub.Status,
		"reason":     sub.Reason,
		"decided_at": sub.DecidedAt,
	})
}
