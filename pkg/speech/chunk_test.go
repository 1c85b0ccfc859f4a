package speech

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("  Hello world.  ", 4500)
	assert.Equal(t, []string{"Hello world."}, chunks)
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 100))
	assert.Empty(t, Split(" \n\t ", 100))
}

func TestSplitNonPositiveMax(t *testing.T) {
	assert.Equal(t, []string{"abc def"}, Split(" abc def ", 0))
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	// 100 byte limit: a period at byte 80 is inside the 70% window.
	first := strings.Repeat("a", 79) + "."
	second := strings.Repeat("b", 50)
	text := first + " " + second

	chunks := Split(text, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestSplitIgnoresEarlySentenceEnd(t *testing.T) {
	// Period at byte 10 is outside the sentence window, the space at 60 is
	// inside the word window.
	text := strings.Repeat("a", 9) + "." + strings.Repeat("c", 50) + " " + strings.Repeat("d", 80)

	chunks := Split(text, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 9)+"."+strings.Repeat("c", 50), chunks[0])
	assert.Equal(t, strings.Repeat("d", 80), chunks[1])
}

func TestSplitHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := Split(text, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestSplitHardCutRespectsRuneBoundaries(t *testing.T) {
	// "é" is two bytes; a cut at an odd byte offset would split it.
	text := strings.Repeat("é", 120)
	chunks := Split(text, 101)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), 101)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitPreservesContent(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog. "
	text := strings.Repeat(sentence, 300)

	chunks := Split(text, 4500)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.NotEmpty(t, c)
		assert.LessOrEqual(t, len(c), 4500)
		assert.Equal(t, strings.TrimSpace(c), c)
	}

	squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
	assert.Equal(t, squash(text), squash(strings.Join(chunks, " ")))
}

func TestSplitTenThousandChars(t *testing.T) {
	text := strings.Repeat("word ", 2000)
	chunks := Split(text, 4500)
	assert.Len(t, chunks, 3)
}
