package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/auth"
)

func (h *Handler) saveVersion(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	ver, err := sess.Saver.SaveVersion(c.Request.Context(), auth.UserUID(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "version": ver})
}

func (h *Handler) listVersions(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	versions, err := h.versions.List(c.Request.Context(), c.Param("public_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "versions": versions})
}

// autosaveNow forces one autosave pass for the session, outside the
// scheduler's cadence. Used by the client before risky operations.
func (h *Handler) autosaveNow(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Saver.Autosave(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "autosave failed, will retry on next cycle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
