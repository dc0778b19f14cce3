package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserUID = "user_uid"
	CtxPlan    = "plan"

	// PlanStudio accounts have unlimited tool credits.
	PlanStudio = "studio"
)

// UserUID extracts the authenticated user id from the gin context.
// Set by Middleware.
func UserUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserUID))
}

// Unlimited reports whether the caller's plan skips credit metering.
func Unlimited(c *gin.Context) bool {
	return c.GetString(CtxPlan) == PlanStudio
}
