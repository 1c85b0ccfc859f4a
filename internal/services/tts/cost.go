package tts

import "strings"

// Price per character in USD by voice family.
const (
	standardPerChar = 4.0 / 1_000_000
	premiumPerChar  = 16.0 / 1_000_000
)

// VoiceFamily classifies a provider voice name for pricing.
func VoiceFamily(voiceName string) string {
	lower := strings.ToLower(voiceName)
	switch {
	case strings.Contains(lower, "neural"):
		return "neural"
	case strings.Contains(lower, "wavenet"):
		return "wavenet"
	default:
		return "standard"
	}
}

// EstimateCost returns the approximate provider charge in USD for
// synthesizing characters with the given voice.
func EstimateCost(characters int, voiceName string) float64 {
	if characters <= 0 {
		return 0
	}
	if VoiceFamily(voiceName) == "standard" {
		return float64(characters) * standardPerChar
	}
	return float64(characters) * premiumPerChar
}
