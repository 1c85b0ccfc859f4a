package feed

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// RegisterRoutes registers feed admin routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/stats", GetStats(deps))
	router.POST("/refresh", PostRefresh(deps))
}
