// Package feed exposes feed cache administration.
package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// GetStats reports feed cache state alongside the episode count
func GetStats(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		count, err := deps.Feed.EpisodeCount(ctx)
		if err != nil {
			types.RespondError(c, err)
			return
		}
		latest, err := deps.Feed.LatestEpisode(ctx)
		if err != nil {
			types.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.FeedStatsResponse{
			BaseResponse:  types.BaseResponse{Status: types.StatusOK},
			Feed:          deps.Feed.Stats(ctx),
			EpisodeCount:  count,
			LatestEpisode: latest,
			FeedURL:       deps.Feed.Metadata().FeedURL(),
		})
	}
}

// PostRefresh drops the cached feed and rebuilds it
func PostRefresh(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		doc, err := deps.Feed.Refresh(ctx)
		if err != nil {
			types.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  types.StatusOK,
			"message": "Feed refreshed",
			"bytes":   len(doc),
			"feed":    deps.Feed.Stats(ctx),
		})
	}
}
