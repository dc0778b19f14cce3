package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/auth"
	"github.com/arkiform/go-plan-backend/internal/editor/domain"
)

// ---- levels ----

func (h *Handler) addLevel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Name      string  `json:"name"`
		Elevation float64 `json:"elevation_m"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddLevel(req.Name, req.Elevation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "level_id": id})
}

func (h *Handler) renameLevel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	respondMutation(c, sess.Store.RenameLevel(c.Param("level_id"), req.Name))
}

func (h *Handler) deleteLevel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteLevel(c.Param("level_id")))
}

// ---- layers ----

func (h *Handler) addLayer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddLayer(c.Param("level_id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "layer_id": id})
}

// updateLayer handles rename and the visible/locked toggles in one PATCH;
// only the fields present in the body are applied.
func (h *Handler) updateLayer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Visible *bool   `json:"visible"`
		Locked  *bool   `json:"locked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	levelID, layerID := c.Param("level_id"), c.Param("layer_id")
	if req.Name != nil {
		if err := sess.Store.RenameLayer(levelID, layerID, *req.Name); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Visible != nil {
		if err := sess.Store.SetLayerVisible(levelID, layerID, *req.Visible); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Locked != nil {
		if err := sess.Store.SetLayerLocked(levelID, layerID, *req.Locked); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) deleteLayer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteLayer(c.Param("level_id"), c.Param("layer_id"), c.Query("reassign_to")))
}

// ---- walls ----

func (h *Handler) addWall(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var w domain.Wall
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddWall(c.Param("level_id"), w)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "wall_id": id})
}

func (h *Handler) updateWall(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var w domain.Wall
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	w.ID = c.Param("wall_id")
	respondMutation(c, sess.Store.UpdateWall(c.Param("level_id"), w))
}

func (h *Handler) deleteWall(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteWall(c.Param("level_id"), c.Param("wall_id")))
}

// ---- rooms ----

func (h *Handler) addRoom(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var r domain.Room
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddRoom(c.Param("level_id"), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "room_id": id})
}

func (h *Handler) updateRoom(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var r domain.Room
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	r.ID = c.Param("room_id")
	respondMutation(c, sess.Store.UpdateRoom(c.Param("level_id"), r))
}

func (h *Handler) deleteRoom(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteRoom(c.Param("level_id"), c.Param("room_id")))
}

// ---- placements ----

func (h *Handler) addPlacement(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var pl domain.Placement
	if err := c.ShouldBindJSON(&pl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddPlacement(c.Param("level_id"), pl)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "placement_id": id})
}

func (h *Handler) deletePlacement(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeletePlacement(c.Param("level_id"), c.Param("placement_id")))
}

// ---- comments ----

func (h *Handler) addComment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var cm domain.Comment
	if err := c.ShouldBindJSON(&cm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	cm.Author = auth.UserUID(c)
	id, err := sess.Store.AddComment(c.Param("level_id"), cm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment_id": id})
}

func (h *Handler) replyToComment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	respondMutation(c, sess.Store.ReplyToComment(c.Param("level_id"), c.Param("comment_id"), auth.UserUID(c), req.Text))
}

func (h *Handler) resolveComment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Resolved *bool `json:"resolved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	resolved := true
	if req.Resolved != nil {
		resolved = *req.Resolved
	}
	respondMutation(c, sess.Store.SetCommentResolved(c.Param("level_id"), c.Param("comment_id"), resolved))
}

func (h *Handler) deleteComment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteComment(c.Param("level_id"), c.Param("comment_id")))
}

// ---- dimensions ----

func (h *Handler) addDimension(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var d domain.Dimension
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddDimension(c.Param("level_id"), d)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "dimension_id": id})
}

func (h *Handler) deleteDimension(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteDimension(c.Param("level_id"), c.Param("dimension_id")))
}

// ---- MEP ----

func (h *Handler) addMEPLine(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var m domain.MEPLine
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	id, err := sess.Store.AddMEPLine(c.Param("level_id"), m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "mep_id": id})
}

func (h *Handler) deleteMEPLine(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respondMutation(c, sess.Store.DeleteMEPLine(c.Param("level_id"), c.Param("mep_id")))
}

// ---- project metadata ----

func (h *Handler) setPlanNorth(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Degrees *float64 `json:"degrees"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Degrees == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "degrees is required"})
		return
	}
	respondMutation(c, sess.Store.SetPlanNorth(*req.Degrees))
}

func (h *Handler) setPropertyLines(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Points []domain.Point `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	respondMutation(c, sess.Store.SetPropertyLines(req.Points))
}

func (h *Handler) setTerrain(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Terrain *domain.Terrain `json:"terrain"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	respondMutation(c, sess.Store.SetTerrain(req.Terrain))
}
