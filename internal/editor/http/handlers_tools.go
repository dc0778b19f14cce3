package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/auth"
	edomain "github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/tools/domain"
)

func (h *Handler) invokeTool(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Params map[string]any `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	account := domain.Account{UID: auth.UserUID(c), Unlimited: auth.Unlimited(c)}
	result, err := h.pipe.Invoke(c.Request.Context(), sess, account, c.Param("tool"), req.Params)
	if err != nil {
		respondToolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

func respondToolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownTool):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown tool"})
	case errors.Is(err, domain.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"ok": false, "error": "insufficient credits"})
	case errors.Is(err, domain.ErrToolBusy):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "tool invocation already in flight"})
	case errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
	case edomain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	}
}

func (h *Handler) toolState(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	state := h.pipe.State(c.Param("public_id"), c.Param("tool"))
	c.JSON(http.StatusOK, gin.H{"ok": true, "tool": c.Param("tool"), "state": state})
}
