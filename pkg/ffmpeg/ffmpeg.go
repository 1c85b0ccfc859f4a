// Package ffmpeg wraps the ffmpeg and ffprobe binaries used to join
// synthesized audio segments and measure the result.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// Concat joins inputs, in order, into output using the concat demuxer with
// stream copy. Every input must exist. The manifest is written next to the
// output and removed whether or not ffmpeg succeeds.
func (f *FFmpeg) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return NewProcessingError("concat", output, ErrNoInputs, "")
	}

	absInputs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return NewProcessingError("concat", in, err, "")
		}
		if _, err := os.Stat(abs); err != nil {
			return NewProcessingError("concat", abs, fmt.Errorf("%w: %v", ErrInputMissing, err), "")
		}
		absInputs = append(absInputs, abs)
	}

	manifest, err := buildManifest(absInputs)
	if err != nil {
		return NewProcessingError("concat", output, err, "")
	}

	manifestFile, err := os.CreateTemp(filepath.Dir(output), "concat-*.txt")
	if err != nil {
		return NewProcessingError("manifest_creation", output, err, "")
	}
	manifestPath := manifestFile.Name()
	defer os.Remove(manifestPath)

	if _, err := manifestFile.WriteString(manifest); err != nil {
		manifestFile.Close()
		return NewProcessingError("manifest_creation", manifestPath, err, "")
	}
	if err := manifestFile.Close(); err != nil {
		return NewProcessingError("manifest_creation", manifestPath, err, "")
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		"-y",
		output,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrProcessingTimeout
		}
		return NewProcessingError("concat", output, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// buildManifest renders a concat demuxer list. Single quotes are closed,
// escaped and reopened so any path without a newline round-trips.
func buildManifest(paths []string) (string, error) {
	var b strings.Builder
	for _, p := range paths {
		if strings.ContainsAny(p, "\n\r") {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}
