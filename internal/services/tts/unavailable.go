package tts

import (
	"context"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Unavailable is the Synthesizer used when no provider is configured. Every
// call fails with SYNTHESIS_UNAVAILABLE.
type Unavailable struct {
	Reason string
}

// NewUnavailable returns a Synthesizer that reports reason on every call.
func NewUnavailable(reason string) *Unavailable {
	return &Unavailable{Reason: reason}
}

// Synthesize implements Synthesizer.
func (u *Unavailable) Synthesize(_ context.Context, _ string, _ models.AudioConfig) ([]byte, error) {
	return nil, apperrors.Unavailable(u.Reason)
}
