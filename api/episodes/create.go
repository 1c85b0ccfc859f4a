package episodes

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Create synthesizes the posted text, saves the episode and invalidates the
// feed so the next fetch includes it.
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CreateEpisodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.RespondError(c, bindError(err))
			return
		}

		content := req.Content()
		if !content.SourceType.Valid() {
			types.RespondError(c, apperrors.ValidationError("sourceType", "must be markdown, html or artifact"))
			return
		}

		var override *models.AudioConfig
		if req.Voice != "" {
			cfg, err := models.PresetAudioConfig(req.Voice)
			if err != nil {
				types.RespondError(c, err)
				return
			}
			override = &cfg
		}

		if deps.Synthesizer == nil {
			types.RespondError(c, apperrors.Unavailable("no synthesizer configured"))
			return
		}

		ctx := c.Request.Context()
		result, err := deps.Synthesizer.Synthesize(ctx, content, override)
		if err != nil {
			types.RespondError(c, err)
			return
		}

		episode, err := deps.Store.Save(ctx, content, result, req.SourceURL)
		if err != nil {
			if rmErr := deps.Store.Discard(ctx, result); rmErr != nil {
				log.Warn("failed to remove unsaved audio", "path", result.FilePath, "error", rmErr)
			}
			types.RespondError(c, err)
			return
		}

		if deps.Feed != nil {
			deps.Feed.Invalidate()
		}

		c.JSON(http.StatusCreated, types.SingleEpisodeResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Episode created"},
			Episode:      episode,
		})
	}
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		appErr := apperrors.ValidationError("body", "request body too large")
		appErr.HTTPCode = http.StatusRequestEntityTooLarge
		return appErr
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request body")
}
