package types

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Handler utility functions shared by the route packages

// RespondError writes err as an ErrorResponse with its mapped status.
func RespondError(c *gin.Context, err error) {
	status := apperrors.GetHTTPCode(err)
	resp := ErrorResponse{
		Status:  StatusError,
		Message: err.Error(),
		Code:    string(apperrors.GetCode(err)),
	}
	if appErr, ok := apperrors.As(err); ok {
		resp.Message = appErr.Message
		resp.Details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "code", resp.Code, "error", err)
	} else {
		log.Debug("request rejected", "path", c.Request.URL.Path, "code", resp.Code, "error", err)
	}
	c.JSON(status, resp)
}

// ParseLimitQuery reads an optional positive "limit" query parameter.
// Returns false after responding when the value is invalid.
func ParseLimitQuery(c *gin.Context, defaultLimit int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		RespondError(c, apperrors.ValidationError("limit", "must be a positive integer"))
		return 0, false
	}
	return limit, true
}
