package speech

import (
	"strings"
	"unicode/utf8"
)

const (
	sentenceWindowRatio = 0.7
	wordWindowRatio     = 0.5
)

// Split breaks text into ordered, non-empty chunks of at most maxChunkSize bytes.
//
// Each window prefers to end just after the last sentence terminator (.?!)
// found in its final 30%, then at the last whitespace found in its second
// half, and otherwise is cut hard at maxChunkSize (moved back to a rune
// boundary). Only whitespace at chunk boundaries is dropped, so joining the
// chunks in order reproduces the input modulo that whitespace.
//
// A non-positive maxChunkSize disables splitting.
func Split(text string, maxChunkSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChunkSize <= 0 || len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		for start < len(text) && isSpace(text[start]) {
			start++
		}
		if start >= len(text) {
			break
		}

		rest := text[start:]
		if len(rest) <= maxChunkSize {
			if chunk := strings.TrimSpace(rest); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findCut(rest, maxChunkSize)
		if chunk := strings.TrimSpace(rest[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		start += cut
	}

	return chunks
}

// findCut returns the length of the next chunk taken from the front of rest,
// where len(rest) > maxChunkSize.
func findCut(rest string, maxChunkSize int) int {
	window := rest[:maxChunkSize]

	minSentence := int(float64(maxChunkSize) * sentenceWindowRatio)
	for i := len(window) - 1; i >= minSentence; i-- {
		switch window[i] {
		case '.', '?', '!':
			return i + 1
		}
	}

	minWord := int(float64(maxChunkSize) * wordWindowRatio)
	for i := len(window) - 1; i >= minWord; i-- {
		if isSpace(window[i]) {
			// cut before the space so the chunk stays within the window
			if i > 0 {
				return i
			}
		}
	}

	cut := maxChunkSize
	for cut > 0 && !utf8.RuneStart(rest[cut]) {
		cut--
	}
	if cut == 0 {
		// window smaller than a single rune
		_, size := utf8.DecodeRuneInString(rest)
		cut = size
	}
	return cut
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
