package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/auth"
	"github.com/arkiform/go-plan-backend/internal/collab"
)

func (h *Handler) channel(c *gin.Context) (*collab.Channel, bool) {
	ch, ok := h.hub.Get(c.Param("public_id"))
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project is not open in the editor"})
		return nil, false
	}
	return ch, true
}

func (h *Handler) sendChat(c *gin.Context) {
	ch, ok := h.channel(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "text is required"})
		return
	}
	requestID := ch.SendChat(c.Request.Context(), auth.UserUID(c), req.Text)
	resp := gin.H{"ok": true}
	if requestID != "" {
		resp["request_id"] = requestID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) collaborators(c *gin.Context) {
	ch, ok := h.channel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "collaborators": ch.Roster()})
}

// streamEvents pushes roster and transcript updates over Server-Sent Events.
// The channel bumps an internal revision on every change; we poll it and push
// a snapshot whenever it moves, with periodic keep-alive comments in between.
func (h *Handler) streamEvents(c *gin.Context) {
	ch, ok := h.channel(c)
	if !ok {
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	push := func(event string) {
		data, err := json.Marshal(gin.H{
			"collaborators": ch.Roster(),
			"transcript":    ch.Transcript(),
			"state":         editorState(sess),
		})
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	push("initial")
	lastRev := ch.Rev()
	lastStoreRev := sess.Store.Revision()

	ctx := c.Request.Context()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	poll := time.NewTicker(1 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-poll.C:
			rev, storeRev := ch.Rev(), sess.Store.Revision()
			if rev == lastRev && storeRev == lastStoreRev {
				continue
			}
			lastRev, lastStoreRev = rev, storeRev
			push("update")
		}
	}
}
