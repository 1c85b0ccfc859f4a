package storage

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// RegisterRoutes registers storage admin routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/stats", GetStats(deps))
	router.GET("/integrity", GetIntegrity(deps))
	router.POST("/maintenance", PostMaintenance(deps))
}
