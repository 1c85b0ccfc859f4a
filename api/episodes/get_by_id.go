package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// GetByID returns a single episode
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		episode, err := deps.Store.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.SingleEpisodeResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Episode:      episode,
		})
	}
}
