package podcast

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// RegisterRoutes registers the feed route
func RegisterRoutes(router gin.IRoutes, deps *types.Dependencies) {
	router.GET("/podcast/:uuid", Get(deps))
}
