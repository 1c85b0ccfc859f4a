// Package audio serves episode audio files.
package audio

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Get serves the audio file of a stored episode. Only file names owned by an
// episode are served, so the handler never reaches outside the audio
// directory. Range requests are honoured; only requests starting at byte 0
// count as a download.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileName := c.Param("file")
		if fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
			types.RespondError(c, apperrors.NotFound("audio", fileName))
			return
		}

		ctx := c.Request.Context()
		episode, err := deps.Store.GetByFileName(ctx, fileName)
		if err != nil {
			types.RespondError(c, err)
			return
		}

		path := filepath.Join(deps.Store.AudioDir(), episode.FileName)
		if !fileExists(path) {
			types.RespondError(c, apperrors.New(apperrors.ErrCodeIntegrity, "audio file missing for episode").
				WithDetail("id", episode.ID).
				WithDetail("file", episode.FileName))
			return
		}

		if c.Request.Method == http.MethodGet && countsAsDownload(c.GetHeader("Range")) {
			if err := deps.Store.RecordDownload(ctx, episode.ID); err != nil {
				log.Warn("failed to record download", "id", episode.ID, "error", err)
			}
		}

		c.Header("Content-Type", models.MimeTypeForFile(episode.FileName))
		c.Header("Accept-Ranges", "bytes")
		c.File(path)
	}
}

func countsAsDownload(rangeHeader string) bool {
	return rangeHeader == "" || strings.HasPrefix(rangeHeader, "bytes=0-")
}
