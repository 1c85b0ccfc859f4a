// Package tts provides the text-to-speech capability consumed by the
// synthesis pipeline.
package tts

import (
	"context"
	"errors"

	"github.com/killallgit/textcast/internal/models"
)

// ErrLongFormUnavailable is returned by a LongFormSynthesizer that cannot
// serve the request; callers fall back to chunked synthesis.
var ErrLongFormUnavailable = errors.New("long-form synthesis unavailable")

// Synthesizer turns one bounded piece of text into encoded audio bytes.
// Failures carry an AUTH_ERROR, QUOTA_ERROR or NETWORK_ERROR code.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, cfg models.AudioConfig) ([]byte, error)
}

// LongFormSynthesizer renders text beyond the single-call limit straight to
// outputPath.
type LongFormSynthesizer interface {
	SynthesizeLong(ctx context.Context, text string, cfg models.AudioConfig, outputPath string) error
}
