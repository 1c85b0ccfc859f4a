package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// Get handles health check requests
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if deps != nil && deps.Store != nil {
			response["storage"] = getStorageStatus(c, deps)
		} else {
			response["storage"] = gin.H{"status": "not configured"}
		}
		response["synthesis"] = gin.H{"available": deps != nil && deps.SynthesisReady}

		c.JSON(http.StatusOK, response)
	}
}

// getStorageStatus reports whether the metadata document can be read
func getStorageStatus(c *gin.Context, deps *types.Dependencies) gin.H {
	episodes, err := deps.Store.ListAll(c.Request.Context())
	if err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}
	return gin.H{"status": "healthy", "episodes": len(episodes)}
}
