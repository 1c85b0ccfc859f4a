package types

import (
	"context"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/feed"
	"github.com/killallgit/textcast/internal/services/storage"
)

// Synthesizer turns processed content into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, content models.ProcessedContent, override *models.AudioConfig) (*models.SynthesisResult, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	Store       *storage.Store
	Feed        *feed.Service
	Synthesizer Synthesizer
	// SynthesisReady is false when no speech provider is configured.
	SynthesisReady bool
	Version        string
}
