package episodes

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// RegisterRoutes registers episode routes. create carries its own middleware
// so synthesis can be rate limited separately from reads.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, createMiddleware ...gin.HandlerFunc) {
	// GET /api/v1/episodes - List episodes, newest first
	router.GET("", GetAll(deps))

	// GET /api/v1/episodes/:id - Get episode details
	router.GET("/:id", GetByID(deps))

	// DELETE /api/v1/episodes/:id - Delete an episode and its audio
	router.DELETE("/:id", Delete(deps))

	// POST /api/v1/episodes - Synthesize and publish a new episode
	handlers := append(append([]gin.HandlerFunc{}, createMiddleware...), Create(deps))
	router.POST("", handlers...)
}
