// Package http exposes the editor over REST plus one SSE stream. Handlers
// stay thin: bind, call the session's store or services, map errors.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/auth"
	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
)

// session resolves the open session for the project in the URL. A project
// that was never opened (or already closed) is a 409, not a 404: the project
// itself may exist, the editor just is not attached to it.
func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	sess, ok := h.sessions.Get(c.Param("public_id"))
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project is not open in the editor"})
		return nil, false
	}
	return sess, true
}

// respondMutation maps a store mutation result onto the wire. Validation
// failures are the caller's fault; everything else is ours.
func respondMutation(c *gin.Context, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	respondError(c, err)
}

func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNoProject):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no project loaded"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func (h *Handler) open(c *gin.Context) {
	uid := auth.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
		return
	}

	sess, err := h.sessions.Open(c.Request.Context(), uid, c.Param("public_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// The channel's subscription must outlive this request.
	ch := h.hub.Open(context.Background(), sess)
	ch.Join(c.Request.Context(), uid)

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"document": sess.Store.Snapshot(),
		"state":    editorState(sess),
	})
}

func (h *Handler) close(c *gin.Context) {
	uid := auth.UserUID(c)
	projectID := c.Param("public_id")

	if ch, ok := h.hub.Get(projectID); ok {
		ch.Leave(c.Request.Context(), uid)
	}
	h.hub.Close(projectID)

	if err := h.sessions.Close(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func editorState(sess *service.Session) gin.H {
	return gin.H{
		"can_undo":            sess.Store.CanUndo(),
		"can_redo":            sess.Store.CanRedo(),
		"has_unsaved_changes": sess.Store.HasUnsavedChanges(),
		"active_level_id":     sess.Store.ActiveLevelID(),
	}
}

func (h *Handler) state(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": editorState(sess)})
}

func (h *Handler) document(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snapshot := sess.Store.Snapshot()
	if snapshot == nil {
		respondError(c, domain.ErrNoProject)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "document": snapshot})
}

func (h *Handler) undo(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	applied := sess.Store.Undo()
	c.JSON(http.StatusOK, gin.H{"ok": true, "applied": applied, "state": editorState(sess)})
}

func (h *Handler) redo(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	applied := sess.Store.Redo()
	c.JSON(http.StatusOK, gin.H{"ok": true, "applied": applied, "state": editorState(sess)})
}

func (h *Handler) notifications(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notifications": sess.Notes.Drain()})
}

func (h *Handler) setActiveLevel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		LevelID string `json:"level_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "level_id is required"})
		return
	}
	respondMutation(c, sess.Store.SetActiveLevel(req.LevelID))
}

func (h *Handler) setActiveLayer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		LayerID string `json:"layer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "layer_id is required"})
		return
	}
	respondMutation(c, sess.Store.SetActiveLayer(c.Param("level_id"), req.LayerID))
}
