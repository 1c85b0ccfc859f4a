package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// GetAll lists stored episodes, optionally truncated by ?limit=
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := types.ParseLimitQuery(c, 0)
		if !ok {
			return
		}

		episodes, err := deps.Store.ListRecent(c.Request.Context(), limit)
		if err != nil {
			types.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.EpisodesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Episodes:     episodes,
			Count:        len(episodes),
		})
	}
}
