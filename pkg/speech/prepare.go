// Package speech turns extracted article text into input a speech synthesizer
// reads naturally, and splits it into provider-sized pieces.
package speech

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order. Sentence spacing runs before paragraph handling so that
// "end.\n\nNext" keeps a single pause.
var substitutions = []substitution{
	{regexp.MustCompile(`([.!?])\s*([A-Z])`), "$1 $2"},
	{regexp.MustCompile(`\n\n+`), ". "},
	{regexp.MustCompile(`\n`), " "},

	{regexp.MustCompile(`\bDr\.`), "Doctor"},
	{regexp.MustCompile(`\bMr\.`), "Mister"},
	{regexp.MustCompile(`\bMrs\.`), "Missus"},
	{regexp.MustCompile(`\bMs\.`), "Miss"},
	{regexp.MustCompile(`\bProf\.`), "Professor"},
	{regexp.MustCompile(`\betc\.`), "etcetera"},
	{regexp.MustCompile(`\bi\.e\.`), "that is"},
	{regexp.MustCompile(`\be\.g\.`), "for example"},

	{regexp.MustCompile(`\bAPI\b`), "A P I"},
	{regexp.MustCompile(`\bURL\b`), "U R L"},
	{regexp.MustCompile(`\bHTML\b`), "H T M L"},
	{regexp.MustCompile(`\bCSS\b`), "C S S"},
	{regexp.MustCompile(`\bJSON\b`), "Jason"},
	{regexp.MustCompile(`\bSQL\b`), "sequel"},

	{regexp.MustCompile(`\s+`), " "},
}

// Prepare normalizes text for speech synthesis: NFC normalization, pauses for
// paragraph breaks, spoken forms for common abbreviations and acronyms, and
// collapsed whitespace. It is a pure transform.
func Prepare(text string) string {
	out := norm.NFC.String(text)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.TrimSpace(out)

	for _, sub := range substitutions {
		out = sub.pattern.ReplaceAllString(out, sub.replacement)
	}

	return strings.TrimSpace(out)
}

// HasSpeech reports whether text contains at least one letter or digit.
// Punctuation and whitespace alone synthesize to silence.
func HasSpeech(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// CountWords returns the number of whitespace separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateDurationSeconds estimates spoken length at 150 words per minute.
func EstimateDurationSeconds(text string) int {
	const wordsPerMinute = 150
	words := CountWords(text)
	return int(float64(words)/wordsPerMinute*60 + 0.5)
}
