// Package storage exposes episode store administration.
package storage

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/textcast/api/types"
)

// GetStats returns aggregate store statistics
func GetStats(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := deps.Store.Stats(c.Request.Context())
		if err != nil {
			types.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.StorageStatsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Stats:        stats,
		})
	}
}

// GetIntegrity compares metadata against the audio directory
func GetIntegrity(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := deps.Store.VerifyIntegrity(c.Request.Context())
		if err != nil {
			types.RespondError(c, err)
			return
		}
		resp := types.IntegrityResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Integrity:    report,
		}
		if !report.Valid {
			resp.Message = "integrity issues found"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PostMaintenance removes orphaned audio files and re-verifies the store
func PostMaintenance(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := deps.Store.Maintenance(c.Request.Context())
		if err != nil {
			types.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.MaintenanceResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Maintenance:  report,
		})
	}
}
