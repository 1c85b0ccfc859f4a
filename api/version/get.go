package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// Get handles version requests
func Get(deps *types.Dependencies) gin.HandlerFunc {
	v := "dev"
	if deps != nil && deps.Version != "" {
		v = deps.Version
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "textcast",
			"version":     v,
			"description": "Text to speech podcast service",
			"status":      "running",
		})
	}
}
