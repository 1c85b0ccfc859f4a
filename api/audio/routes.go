package audio

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// RegisterRoutes registers audio routes
func RegisterRoutes(router gin.IRoutes, deps *types.Dependencies) {
	router.GET("/audio/:file", Get(deps))
	router.HEAD("/audio/:file", Get(deps))
}
