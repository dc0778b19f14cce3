package http

import (
	"github.com/gin-gonic/gin"

	"github.com/arkiform/go-plan-backend/internal/collab"
	"github.com/arkiform/go-plan-backend/internal/editor/repository"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/tools/pipeline"
)

type Handler struct {
	sessions *service.Manager
	hub      *collab.Hub
	pipe     *pipeline.Pipeline
	versions *repository.VersionRepository
}

// RegisterProjectsSubroutes mounts the editor under /projects/:public_id/editor.
func RegisterProjectsSubroutes(projectsGroup *gin.RouterGroup, sessions *service.Manager, hub *collab.Hub, pipe *pipeline.Pipeline, versions *repository.VersionRepository) {
	h := &Handler{sessions: sessions, hub: hub, pipe: pipe, versions: versions}

	ed := projectsGroup.Group("/:public_id/editor")

	ed.POST("/open", h.open)
	ed.POST("/close", h.close)
	ed.GET("/state", h.state)
	ed.GET("/document", h.document)
	ed.POST("/undo", h.undo)
	ed.POST("/redo", h.redo)
	ed.GET("/notifications", h.notifications)

	ed.POST("/active-level", h.setActiveLevel)

	ed.POST("/levels", h.addLevel)
	ed.PATCH("/levels/:level_id", h.renameLevel)
	ed.DELETE("/levels/:level_id", h.deleteLevel)
	ed.POST("/levels/:level_id/active-layer", h.setActiveLayer)

	ed.POST("/levels/:level_id/layers", h.addLayer)
	ed.PATCH("/levels/:level_id/layers/:layer_id", h.updateLayer)
	ed.DELETE("/levels/:level_id/layers/:layer_id", h.deleteLayer)

	ed.POST("/levels/:level_id/walls", h.addWall)
	ed.PUT("/levels/:level_id/walls/:wall_id", h.updateWall)
	ed.DELETE("/levels/:level_id/walls/:wall_id", h.deleteWall)

	ed.POST("/levels/:level_id/rooms", h.addRoom)
	ed.PUT("/levels/:level_id/rooms/:room_id", h.updateRoom)
	ed.DELETE("/levels/:level_id/rooms/:room_id", h.deleteRoom)

	ed.POST("/levels/:level_id/placements", h.addPlacement)
	ed.DELETE("/levels/:level_id/placements/:placement_id", h.deletePlacement)

	ed.POST("/levels/:level_id/comments", h.addComment)
	ed.POST("/levels/:level_id/comments/:comment_id/replies", h.replyToComment)
	ed.POST("/levels/:level_id/comments/:comment_id/resolve", h.resolveComment)
	ed.DELETE("/levels/:level_id/comments/:comment_id", h.deleteComment)

	ed.POST("/levels/:level_id/dimensions", h.addDimension)
	ed.DELETE("/levels/:level_id/dimensions/:dimension_id", h.deleteDimension)

	ed.POST("/levels/:level_id/mep", h.addMEPLine)
	ed.DELETE("/levels/:level_id/mep/:mep_id", h.deleteMEPLine)

	ed.PUT("/plan-north", h.setPlanNorth)
	ed.PUT("/property-lines", h.setPropertyLines)
	ed.PUT("/terrain", h.setTerrain)

	ed.POST("/versions", h.saveVersion)
	ed.GET("/versions", h.listVersions)
	ed.POST("/autosave", h.autosaveNow)

	ed.POST("/tools/:tool/invoke", h.invokeTool)
	ed.GET("/tools/:tool/state", h.toolState)

	ed.POST("/chat", h.sendChat)
	ed.GET("/collaborators", h.collaborators)
	ed.GET("/events", h.streamEvents)
}
