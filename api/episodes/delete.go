package episodes

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Delete removes an episode and its audio file, then invalidates the feed
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		deleted, err := deps.Store.Delete(c.Request.Context(), id)
		if err != nil {
			types.RespondError(c, err)
			return
		}
		if !deleted {
			types.RespondError(c, apperrors.NotFound("episode", id))
			return
		}

		if deps.Feed != nil {
			deps.Feed.Invalidate()
		}
		log.Info("episode deleted via api", "id", id)

		c.JSON(http.StatusOK, types.BaseResponse{
			Status:  types.StatusOK,
			Message: "Episode deleted",
		})
	}
}
