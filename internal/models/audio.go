package models

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Gender is the SSML voice gender requested from the provider.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderNeutral Gender = "NEUTRAL"
)

// AudioEncoding is the provider output encoding.
type AudioEncoding string

const (
	EncodingMP3      AudioEncoding = "MP3"
	EncodingOggOpus  AudioEncoding = "OGG_OPUS"
	EncodingLinear16 AudioEncoding = "LINEAR16"
)

// Extension returns the file extension, with leading dot, for audio in this encoding.
func (e AudioEncoding) Extension() string {
	switch e {
	case EncodingOggOpus:
		return ".ogg"
	case EncodingLinear16:
		return ".wav"
	default:
		return ".mp3"
	}
}

// MimeType returns the content type served for this encoding.
func (e AudioEncoding) MimeType() string {
	switch e {
	case EncodingOggOpus:
		return "audio/ogg"
	case EncodingLinear16:
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}

// AudioExtensions lists every extension the pipeline can produce.
var AudioExtensions = []string{".mp3", ".ogg", ".wav"}

// MimeTypeForFile returns the content type for an audio file name.
func MimeTypeForFile(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".ogg"):
		return EncodingOggOpus.MimeType()
	case strings.HasSuffix(lower, ".wav"):
		return EncodingLinear16.MimeType()
	default:
		return EncodingMP3.MimeType()
	}
}

// Voice identifies a provider voice.
type Voice struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

// LanguageCode derives the BCP-47 code from a voice name such as "en-US-Wavenet-C".
func (v Voice) LanguageCode() string {
	parts := strings.SplitN(v.Name, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}

// AudioConfig describes how text should be voiced.
type AudioConfig struct {
	Voice        Voice         `json:"voice"`
	Encoding     AudioEncoding `json:"encoding"`
	Pitch        float64       `json:"pitch"`
	SpeakingRate float64       `json:"speakingRate"`
	VolumeGainDb *float64      `json:"volumeGainDb,omitempty"`
}

// Validate checks the ranges accepted by the provider.
func (c AudioConfig) Validate() error {
	if c.Voice.Name == "" {
		return apperrors.ValidationError("voice.name", "must be set")
	}
	switch c.Voice.Gender {
	case GenderMale, GenderFemale, GenderNeutral:
	default:
		return apperrors.ValidationError("voice.gender", fmt.Sprintf("unknown gender %q", c.Voice.Gender))
	}
	switch c.Encoding {
	case EncodingMP3, EncodingOggOpus, EncodingLinear16:
	default:
		return apperrors.ValidationError("encoding", fmt.Sprintf("unknown encoding %q", c.Encoding))
	}
	if c.Pitch < -20 || c.Pitch > 20 {
		return apperrors.ValidationError("pitch", "must be between -20 and 20")
	}
	if c.SpeakingRate < 0.25 || c.SpeakingRate > 4.0 {
		return apperrors.ValidationError("speakingRate", "must be between 0.25 and 4.0")
	}
	if c.VolumeGainDb != nil && (*c.VolumeGainDb < -96 || *c.VolumeGainDb > 16) {
		return apperrors.ValidationError("volumeGainDb", "must be between -96 and 16")
	}
	return nil
}

// DefaultPreset is used when no voice is requested.
const DefaultPreset = "neutral-wavenet"

var voicePresets = map[string]Voice{
	"neutral-standard": {Name: "en-US-Standard-C", Gender: GenderNeutral},
	"neutral-wavenet":  {Name: "en-US-Wavenet-C", Gender: GenderNeutral},
	"male-wavenet":     {Name: "en-US-Wavenet-A", Gender: GenderMale},
	"female-wavenet":   {Name: "en-US-Wavenet-E", Gender: GenderFemale},
	"male-neural":      {Name: "en-US-Neural2-A", Gender: GenderMale},
	"female-neural":    {Name: "en-US-Neural2-C", Gender: GenderFemale},
}

// VoicePresets returns the preset names in sorted order.
func VoicePresets() []string {
	names := make([]string, 0, len(voicePresets))
	for name := range voicePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetAudioConfig returns the default audio settings voiced by the named
// preset. An empty name selects DefaultPreset.
func PresetAudioConfig(preset string) (AudioConfig, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	voice, ok := voicePresets[preset]
	if !ok {
		return AudioConfig{}, apperrors.ValidationError("voice", fmt.Sprintf("unknown voice preset %q", preset)).
			WithDetail("available", VoicePresets())
	}
	return AudioConfig{
		Voice:        voice,
		Encoding:     EncodingMP3,
		Pitch:        0,
		SpeakingRate: 1.0,
	}, nil
}

// DefaultAudioConfig returns the settings for DefaultPreset.
func DefaultAudioConfig() AudioConfig {
	cfg, _ := PresetAudioConfig(DefaultPreset)
	return cfg
}
