package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/textcast/api/audio"
	"github.com/killallgit/textcast/api/episodes"
	feedapi "github.com/killallgit/textcast/api/feed"
	"github.com/killallgit/textcast/api/health"
	"github.com/killallgit/textcast/api/podcast"
	storageapi "github.com/killallgit/textcast/api/storage"
	"github.com/killallgit/textcast/api/types"
	"github.com/killallgit/textcast/api/version"
	"github.com/killallgit/textcast/pkg/config"
)

// Rate limit group names, keyed into rate_limiting.groups
const (
	GroupFeed      = "feed"
	GroupAudio     = "audio"
	GroupSynthesis = "synthesis"
	GroupDefault   = "default"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rl config.RateLimitConfig, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.Store == nil || deps.Feed == nil {
		return fmt.Errorf("store and feed dependencies are required")
	}

	limit := func(group string) gin.HandlerFunc {
		if !rl.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		perMinute, ok := rl.Groups[group]
		if !ok {
			perMinute = rl.Groups[GroupDefault]
		}
		return PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, group, perMinute, rl.Burst)
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// Podcast clients poll the feed and fetch audio
	podcast.RegisterRoutes(engine.Group("", limit(GroupFeed)), deps)
	audio.RegisterRoutes(engine.Group("", limit(GroupAudio)), deps)

	// API v1 routes
	v1 := engine.Group("/api/v1")

	episodeGroup := v1.Group("/episodes")
	episodeGroup.Use(limit(GroupDefault))
	episodes.RegisterRoutes(episodeGroup, deps, limit(GroupSynthesis))

	storageGroup := v1.Group("/storage")
	storageGroup.Use(limit(GroupDefault))
	storageapi.RegisterRoutes(storageGroup, deps)

	feedGroup := v1.Group("/feed")
	feedGroup.Use(limit(GroupDefault))
	feedapi.RegisterRoutes(feedGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  types.StatusError,
			"message": "The requested endpoint was not found",
			"code":    "NOT_FOUND",
			"path":    c.Request.URL.Path,
		})
	}
}
