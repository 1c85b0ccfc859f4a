package synthesis

import (
	"context"
	"errors"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tcolgate/mp3"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/pkg/speech"
)

// DurationProber measures an audio file, typically via ffprobe.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// measureDuration returns whole seconds of audio in path. It asks the prober
// first, decodes MP3 frames when that fails, and finally estimates from the
// spoken text.
func (s *Service) measureDuration(ctx context.Context, path string, encoding models.AudioEncoding, text string) int {
	if s.prober != nil {
		seconds, err := s.prober.Duration(ctx, path)
		if err == nil && seconds > 0 {
			return int(math.Round(seconds))
		}
		log.Debug("probe failed, falling back", "file", path, "error", err)
	}

	if encoding == models.EncodingMP3 {
		seconds, err := mp3Duration(path)
		if err == nil && seconds > 0 {
			return int(math.Round(seconds))
		}
		log.Debug("mp3 frame decode failed, estimating from text", "file", path, "error", err)
	}

	return speech.EstimateDurationSeconds(text)
}

func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
