// Package podcast serves the public RSS feed.
package podcast

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

const contentTypeRSS = "application/rss+xml; charset=utf-8"

// Get serves the cached feed document, gzip-encoded when the client accepts it
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := c.Param("uuid")
		if uuid != deps.Feed.Metadata().PodcastUUID {
			types.RespondError(c, apperrors.NotFound("podcast", uuid))
			return
		}

		ctx := c.Request.Context()
		c.Header("Cache-Control", "public, max-age=300")
		c.Header("Vary", "Accept-Encoding")

		if acceptsGzip(c.GetHeader("Accept-Encoding")) {
			doc, err := deps.Feed.GenerateGzip(ctx)
			if err != nil {
				types.RespondError(c, err)
				return
			}
			c.Header("Content-Encoding", "gzip")
			c.Data(http.StatusOK, contentTypeRSS, doc)
			return
		}

		doc, err := deps.Feed.Generate(ctx)
		if err != nil {
			types.RespondError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeRSS, doc)
	}
}

func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(coding) != "gzip" {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}
