// Package synthesis turns processed content into a finished audio file,
// choosing between single-call, long-form and chunked synthesis.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/tts"
	apperrors "github.com/killallgit/textcast/pkg/errors"
	"github.com/killallgit/textcast/pkg/ffmpeg"
	"github.com/killallgit/textcast/pkg/speech"
)

// Defaults for the provider limits, in bytes of prepared text.
const (
	DefaultRegularLimit  = 4500
	DefaultLongFormLimit = 1_000_000
	DefaultCallTimeout   = 60 * time.Second
)

// ScratchPrefix starts the name of every per-synthesis temporary directory
// created inside the audio directory.
const ScratchPrefix = models.ScratchDirPrefix

// Strategy is how a text is sent to the provider.
type Strategy string

const (
	StrategySingle   Strategy = "single"
	StrategyLongForm Strategy = "long-form"
	StrategyChunked  Strategy = "chunked"
)

// Concatenator joins ordered audio files into output.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, output string) error
}

// ProgressFunc receives progress updates. It is called synchronously.
type ProgressFunc func(models.Progress)

// Service orchestrates speech synthesis for one episode at a time per call.
type Service struct {
	synth         tts.Synthesizer
	longForm      tts.LongFormSynthesizer
	concat        Concatenator
	prober        DurationProber
	audioDir      string
	regularLimit  int
	longFormLimit int
	callTimeout   time.Duration
	defaults      models.AudioConfig
	progress      ProgressFunc
	newID         func() string
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLongForm enables delegation of mid-sized texts to a long-form capability.
func WithLongForm(lf tts.LongFormSynthesizer) Option {
	return func(s *Service) { s.longForm = lf }
}

// WithProber sets the duration prober.
func WithProber(p DurationProber) Option {
	return func(s *Service) { s.prober = p }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

// WithLimits overrides the single-call and long-form length limits.
func WithLimits(regular, longForm int) Option {
	return func(s *Service) {
		if regular > 0 {
			s.regularLimit = regular
		}
		if longForm > 0 {
			s.longFormLimit = longForm
		}
	}
}

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithDefaultAudioConfig sets the voice used when a request has no override.
func WithDefaultAudioConfig(cfg models.AudioConfig) Option {
	return func(s *Service) { s.defaults = cfg }
}

// WithIDGenerator replaces the episode id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a synthesis orchestrator writing into audioDir.
func NewService(synth tts.Synthesizer, concat Concatenator, audioDir string, opts ...Option) *Service {
	s := &Service{
		synth:         synth,
		concat:        concat,
		audioDir:      audioDir,
		regularLimit:  DefaultRegularLimit,
		longFormLimit: DefaultLongFormLimit,
		callTimeout:   DefaultCallTimeout,
		defaults:      models.DefaultAudioConfig(),
		newID:         uuid.NewString,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AudioDir returns the directory episodes are written to.
func (s *Service) AudioDir() string {
	return s.audioDir
}

// SelectStrategy picks the synthesis strategy for prepared text of length n.
func (s *Service) SelectStrategy(n int) Strategy {
	switch {
	case n <= s.regularLimit:
		return StrategySingle
	case n <= s.longFormLimit && s.longForm != nil:
		return StrategyLongForm
	default:
		return StrategyChunked
	}
}

// Synthesize renders content into a new audio file in the audio directory.
// override, when non-nil, replaces the default audio settings. On failure no
// output file and no scratch directory remain, and the returned error is a
// *SynthesisError.
func (s *Service) Synthesize(ctx context.Context, content models.ProcessedContent, override *models.AudioConfig) (*models.SynthesisResult, error) {
	s.report(models.StagePreparing, 0, "Preparing text for speech synthesis", 0, 0)

	cfg := s.defaults
	if override != nil {
		cfg = *override
	}
	if err := cfg.Validate(); err != nil {
		return nil, &SynthesisError{Stage: StagePrepare, Err: err}
	}

	text := speech.Prepare(content.Text)
	if !speech.HasSpeech(text) {
		return nil, &SynthesisError{Stage: StagePrepare, Err: apperrors.ValidationError("text", "no speakable text")}
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return nil, &SynthesisError{Stage: StagePrepare, Err: apperrors.FileError("mkdir", s.audioDir, err)}
	}

	id := s.newID()
	fileName := models.EpisodeFileName(id, cfg.Encoding)
	finalPath := filepath.Join(s.audioDir, fileName)

	strategy := s.SelectStrategy(len(text))
	log.Info("synthesizing episode",
		"id", id,
		"title", content.Title,
		"characters", len(text),
		"strategy", strategy,
		"voice", cfg.Voice.Name,
		"estimatedCost", fmt.Sprintf("$%.4f", tts.EstimateCost(len(text), cfg.Voice.Name)))

	if err := s.run(ctx, strategy, id, text, cfg, finalPath); err != nil {
		s.removeOutput(finalPath)
		return nil, err
	}

	s.report(models.StageFinalizing, 95, "Measuring audio", 0, 0)

	info, err := os.Stat(finalPath)
	if err != nil {
		s.removeOutput(finalPath)
		return nil, &SynthesisError{Stage: StageFinalize, Err: apperrors.FileError("stat", finalPath, err)}
	}
	duration := s.measureDuration(ctx, finalPath, cfg.Encoding, text)

	s.report(models.StageFinalizing, 100, "Audio generation complete", 0, 0)
	log.Info("episode synthesized", "id", id, "file", fileName, "bytes", info.Size(), "duration", duration)

	return &models.SynthesisResult{
		EpisodeID: id,
		Title:     content.Title,
		FileName:  fileName,
		FilePath:  finalPath,
		FileSize:  info.Size(),
		Duration:  duration,
		CreatedAt: s.now(),
	}, nil
}

func (s *Service) run(ctx context.Context, strategy Strategy, id, text string, cfg models.AudioConfig, finalPath string) error {
	switch strategy {
	case StrategySingle:
		return s.synthesizeSingle(ctx, text, cfg, finalPath)
	case StrategyLongForm:
		err := s.synthesizeLongForm(ctx, text, cfg, finalPath)
		if !errors.Is(err, tts.ErrLongFormUnavailable) {
			return err
		}
		log.Warn("long-form synthesis unavailable, falling back to chunks", "id", id)
		s.removeOutput(finalPath)
	}
	return s.synthesizeChunked(ctx, id, text, cfg, finalPath)
}

func (s *Service) synthesizeSingle(ctx context.Context, text string, cfg models.AudioConfig, finalPath string) error {
	s.report(models.StageGenerating, 10, "Generating audio", 1, 0)

	audio, err := s.call(ctx, text, cfg)
	if err != nil {
		return &SynthesisError{Stage: StageSynthesize, Err: err}
	}
	if err := os.WriteFile(finalPath, audio, 0o644); err != nil {
		return &SynthesisError{Stage: StageSynthesize, Err: apperrors.FileError("write", finalPath, err)}
	}

	s.report(models.StageGenerating, 90, "Audio generated", 1, 1)
	return nil
}

func (s *Service) synthesizeLongForm(ctx context.Context, text string, cfg models.AudioConfig, finalPath string) error {
	s.report(models.StageGenerating, 10, "Generating long-form audio", 0, 0)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.longForm.SynthesizeLong(callCtx, text, cfg, finalPath); err != nil {
		if errors.Is(err, tts.ErrLongFormUnavailable) {
			return err
		}
		return &SynthesisError{Stage: StageSynthesize, Err: classifyCallError(callCtx, err)}
	}
	return nil
}

// synthesizeChunked renders each chunk in order into a private scratch
// directory, then joins them into finalPath. The scratch directory is always
// removed.
func (s *Service) synthesizeChunked(ctx context.Context, id, text string, cfg models.AudioConfig, finalPath string) error {
	chunks := speech.Split(text, s.regularLimit)
	if len(chunks) == 0 {
		return &SynthesisError{Stage: StageSynthesize, Err: apperrors.ValidationError("text", "no speakable text")}
	}

	scratch, err := os.MkdirTemp(s.audioDir, ScratchPrefix+id+"-")
	if err != nil {
		return &SynthesisError{Stage: StageSynthesize, Err: apperrors.FileError("mkdir", s.audioDir, err)}
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn("failed to remove synthesis scratch directory", "dir", scratch, "error", err)
		}
	}()

	ext := cfg.Encoding.Extension()
	paths := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return &SynthesisError{Stage: StageSynthesize, Err: apperrors.Wrap(err, apperrors.ErrCodeNetwork, "synthesis cancelled")}
		}
		s.report(models.StageGenerating, 10+(i*70)/len(chunks),
			fmt.Sprintf("Generating chunk %d of %d", i+1, len(chunks)), len(chunks), i)

		audio, err := s.call(ctx, chunk, cfg)
		if err != nil {
			return &SynthesisError{Stage: StageSynthesize, Err: fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)}
		}

		path := filepath.Join(scratch, fmt.Sprintf("chunk-%04d%s", i, ext))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return &SynthesisError{Stage: StageSynthesize, Err: apperrors.FileError("write", path, err)}
		}
		paths = append(paths, path)
		log.Debug("chunk synthesized", "id", id, "chunk", i+1, "of", len(chunks), "bytes", len(audio))
	}

	if len(paths) == 1 {
		if err := os.Rename(paths[0], finalPath); err != nil {
			return &SynthesisError{Stage: StageFinalize, Err: apperrors.FileError("rename", finalPath, err)}
		}
		return nil
	}

	s.report(models.StageConcatenating, 85, "Combining audio chunks", len(chunks), len(chunks))

	if err := s.concat.Concat(ctx, paths, finalPath); err != nil {
		var procErr *ffmpeg.ProcessingError
		if errors.Is(err, ffmpeg.ErrInputMissing) {
			// a chunk vanished from the scratch directory; not a tool failure
			err = apperrors.FileError("concat", finalPath, err)
		} else if errors.As(err, &procErr) {
			err = apperrors.SubprocessError("ffmpeg", err).WithDetail("stderr", procErr.Stderr)
		} else if _, ok := apperrors.As(err); !ok {
			err = apperrors.SubprocessError("concat", err)
		}
		return &SynthesisError{Stage: StageConcatenate, Err: err}
	}
	return nil
}

// call performs one bounded provider call.
func (s *Service) call(ctx context.Context, text string, cfg models.AudioConfig) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	audio, err := s.synth.Synthesize(callCtx, text, cfg)
	if err != nil {
		return nil, classifyCallError(callCtx, err)
	}
	if len(audio) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNetwork, "provider returned empty audio")
	}
	return audio, nil
}

// classifyCallError gives uncoded provider failures a code; a hit deadline
// is a network failure.
func classifyCallError(ctx context.Context, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "speech synthesis call timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "speech synthesis call failed")
}

func (s *Service) removeOutput(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove partial output", "file", path, "error", err)
	}
}

func (s *Service) report(stage models.ProgressStage, percent int, message string, total, completed int) {
	if s.progress == nil {
		return
	}
	s.progress(models.Progress{
		Stage:           stage,
		Percent:         percent,
		Message:         message,
		ChunksTotal:     total,
		ChunksCompleted: completed,
	})
}
