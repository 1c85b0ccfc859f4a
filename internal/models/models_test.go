package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/textcast/pkg/errors"
)

func TestEpisodeSourceMapping(t *testing.T) {
	tests := []struct {
		in       SourceType
		expected EpisodeSource
	}{
		{SourceMarkdown, EpisodeSourceMarkdown},
		{SourceHTML, EpisodeSourceURL},
		{SourceArtifact, EpisodeSourceArtifact},
		{SourceType("pdf"), EpisodeSourceArtifact},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.expected, ProcessedContent{SourceType: tt.in}.EpisodeSource())
		})
	}
}

func TestPresetAudioConfig(t *testing.T) {
	cfg, err := PresetAudioConfig("")
	require.NoError(t, err)
	assert.Equal(t, "en-US-Wavenet-C", cfg.Voice.Name)
	assert.Equal(t, GenderNeutral, cfg.Voice.Gender)
	assert.Equal(t, EncodingMP3, cfg.Encoding)
	assert.NoError(t, cfg.Validate())

	_, err = PresetAudioConfig("robot")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))

	assert.Len(t, VoicePresets(), 6)
}

func TestAudioConfigValidate(t *testing.T) {
	loud := 20.0
	tests := []struct {
		name   string
		mutate func(c *AudioConfig)
		field  string
	}{
		{"pitch too high", func(c *AudioConfig) { c.Pitch = 20.5 }, "pitch"},
		{"rate too low", func(c *AudioConfig) { c.SpeakingRate = 0.1 }, "speakingRate"},
		{"volume too loud", func(c *AudioConfig) { c.VolumeGainDb = &loud }, "volumeGainDb"},
		{"unknown encoding", func(c *AudioConfig) { c.Encoding = "FLAC" }, "encoding"},
		{"unknown gender", func(c *AudioConfig) { c.Voice.Gender = "ROBOT" }, "voice.gender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAudioConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestVoiceLanguageCode(t *testing.T) {
	assert.Equal(t, "en-US", Voice{Name: "en-US-Neural2-A"}.LanguageCode())
	assert.Equal(t, "", Voice{Name: "custom"}.LanguageCode())
}

func TestEpisodeFileName(t *testing.T) {
	assert.Equal(t, "episode-abc.mp3", EpisodeFileName("abc", EncodingMP3))
	assert.Equal(t, "episode-abc.ogg", EpisodeFileName("abc", EncodingOggOpus))
	assert.Equal(t, "audio/wav", MimeTypeForFile("episode-abc.WAV"))
}
