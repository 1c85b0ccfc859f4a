package cmd

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/cache"
	"github.com/killallgit/textcast/internal/services/feed"
	"github.com/killallgit/textcast/internal/services/storage"
	"github.com/killallgit/textcast/internal/services/synthesis"
	"github.com/killallgit/textcast/internal/services/tts"
	"github.com/killallgit/textcast/pkg/config"
	apperrors "github.com/killallgit/textcast/pkg/errors"
	"github.com/killallgit/textcast/pkg/ffmpeg"
)

// newStore builds the episode store from configuration.
func newStore(cfg *config.Config, backgroundCheck bool) *storage.Store {
	return storage.NewStore(storage.Options{
		MetadataFile:             cfg.Storage.MetadataFile,
		AudioDir:                 cfg.Storage.AudioDir,
		MaxEpisodes:              cfg.Storage.MaxEpisodes,
		LockRetries:              cfg.Storage.LockRetries,
		LockRetryDelay:           cfg.Storage.LockRetryDelay,
		OrphanGrace:              cfg.Storage.OrphanGrace,
		BackgroundIntegrityCheck: backgroundCheck,
	})
}

// newSynthesizer selects the speech provider. A provider that cannot be
// configured yields the Unavailable synthesizer and ready=false.
func newSynthesizer(ctx context.Context, cfg *config.Config) (synth tts.Synthesizer, ready bool) {
	if cfg.TTS.Provider == "none" {
		return tts.NewUnavailable("speech synthesis is disabled (tts.provider=none)"), false
	}

	client, err := tts.NewGoogleClient(ctx, tts.GoogleConfig{
		APIKey:            cfg.TTS.APIKey,
		CredentialsFile:   cfg.TTS.CredentialsFile,
		Endpoint:          cfg.TTS.Endpoint,
		LanguageCode:      cfg.TTS.LanguageCode,
		Timeout:           cfg.TTS.Timeout,
		RetryAttempts:     cfg.TTS.RetryAttempts,
		RetryDelay:        cfg.TTS.RetryDelay,
		RequestsPerSecond: cfg.TTS.RequestsPerSecond,
	})
	if err != nil {
		log.Warn("speech synthesis unavailable", "code", apperrors.GetCode(err), "error", err)
		return tts.NewUnavailable(err.Error()), false
	}
	return client, true
}

// newSynthesisService wires the orchestrator to ffmpeg and the provider.
func newSynthesisService(cfg *config.Config, synth tts.Synthesizer, opts ...synthesis.Option) (*synthesis.Service, error) {
	audio, err := models.PresetAudioConfig(cfg.TTS.VoicePreset)
	if err != nil {
		return nil, err
	}

	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)
	if err := ff.ValidateBinaries(); err != nil {
		log.Warn("ffmpeg tools not available; long texts cannot be joined and durations are estimated", "error", err)
	}

	base := []synthesis.Option{
		synthesis.WithProber(ff),
		synthesis.WithLimits(cfg.TTS.RegularLimit, cfg.TTS.LongFormLimit),
		synthesis.WithCallTimeout(cfg.TTS.Timeout),
		synthesis.WithDefaultAudioConfig(audio),
	}
	return synthesis.NewService(synth, ff, cfg.Storage.AudioDir, append(base, opts...)...), nil
}

// newFeedService builds the cached feed over store.
func newFeedService(cfg *config.Config, store *storage.Store) (*feed.Service, *cache.MemoryCache) {
	c := cache.NewMemoryCache(time.Minute)
	svc := feed.NewService(store, c, feed.Options{
		Metadata: feed.Metadata{
			BaseURL:     cfg.Feed.BaseURL,
			PodcastUUID: cfg.Feed.PodcastUUID,
			Title:       cfg.Feed.Title,
			Description: cfg.Feed.Description,
			Author:      cfg.Feed.Author,
			Email:       cfg.Feed.Email,
			Language:    cfg.Feed.Language,
			ImageURL:    cfg.Feed.ImageURL,
		},
		TTL:      cfg.Feed.CacheTTL,
		MaxItems: cfg.Feed.MaxItems,
	})
	return svc, c
}
