package types

import (
	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/feed"
	"github.com/killallgit/textcast/internal/services/storage"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EpisodesResponse for episode lists
type EpisodesResponse struct {
	BaseResponse
	Episodes []models.Episode `json:"episodes"`
	Count    int              `json:"count"`
}

// SingleEpisodeResponse for getting a single episode
type SingleEpisodeResponse struct {
	BaseResponse
	Episode *models.Episode `json:"episode"`
}

// StorageStatsResponse for store statistics
type StorageStatsResponse struct {
	BaseResponse
	Stats *storage.Stats `json:"stats"`
}

// IntegrityResponse for integrity checks
type IntegrityResponse struct {
	BaseResponse
	Integrity *storage.IntegrityReport `json:"integrity"`
}

// MaintenanceResponse for maintenance runs
type MaintenanceResponse struct {
	BaseResponse
	Maintenance *storage.MaintenanceReport `json:"maintenance"`
}

// FeedStatsResponse for feed cache statistics
type FeedStatsResponse struct {
	BaseResponse
	Feed          feed.Stats      `json:"feed"`
	EpisodeCount  int             `json:"episodeCount"`
	LatestEpisode *models.Episode `json:"latestEpisode,omitempty"`
	FeedURL       string          `json:"feedUrl"`
}
