package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg. It copies the
// concat manifest (the argument after -i) to the output path (the last
// argument) so tests can inspect what would have been joined.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const copyManifest = `
manifest=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-i" ]; then manifest="$arg"; fi
  prev="$arg"
  out="$arg"
done
cp "$manifest" "$out"
`

func writeChunk(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	return path
}

func TestNew(t *testing.T) {
	f := New("ffmpeg", "ffprobe", 30*time.Second)
	assert.Equal(t, "ffmpeg", f.ffmpegPath)
	assert.Equal(t, "ffprobe", f.ffprobePath)
	assert.Equal(t, 30*time.Second, f.timeout)
}

func TestValidateBinariesMissing(t *testing.T) {
	f := New("/nonexistent/ffmpeg", "ffprobe", time.Second)
	err := f.ValidateBinaries()
	assert.ErrorIs(t, err, ErrFFmpegNotFound)
}

func TestConcatWritesOrderedManifest(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		writeChunk(t, dir, "chunk-0000.mp3"),
		writeChunk(t, dir, "chunk-0001.mp3"),
		writeChunk(t, dir, "chunk-0002.mp3"),
	}
	out := filepath.Join(dir, "episode.mp3")

	f := New(fakeFFmpeg(t, copyManifest), "ffprobe", 10*time.Second)
	require.NoError(t, f.Concat(context.Background(), inputs, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for i, in := range inputs {
		assert.Equal(t, "file '"+in+"'", lines[i])
	}

	// manifest is removed afterwards
	leftovers, err := filepath.Glob(filepath.Join(dir, "concat-*.txt"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestConcatFailureCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{writeChunk(t, dir, "a.mp3"), writeChunk(t, dir, "b.mp3")}

	f := New(fakeFFmpeg(t, `echo "Invalid data found when processing input" >&2; exit 1`), "ffprobe", 10*time.Second)
	err := f.Concat(context.Background(), inputs, filepath.Join(dir, "out.mp3"))
	require.Error(t, err)

	var procErr *ProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "concat", procErr.Operation)
	assert.Contains(t, procErr.Stderr, "Invalid data")

	leftovers, _ := filepath.Glob(filepath.Join(dir, "concat-*.txt"))
	assert.Empty(t, leftovers)
}

func TestConcatRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{writeChunk(t, dir, "a.mp3"), filepath.Join(dir, "missing.mp3")}

	f := New(fakeFFmpeg(t, "exit 0"), "ffprobe", time.Second)
	err := f.Concat(context.Background(), inputs, filepath.Join(dir, "out.mp3"))
	assert.ErrorIs(t, err, ErrInputMissing)
}

func TestConcatRejectsEmptyInputs(t *testing.T) {
	f := New("ffmpeg", "ffprobe", time.Second)
	err := f.Concat(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp3"))
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestBuildManifestEscapesQuotes(t *testing.T) {
	manifest, err := buildManifest([]string{"/tmp/it's here.mp3"})
	require.NoError(t, err)
	assert.Equal(t, `file '/tmp/it'\''s here.mp3'`+"\n", manifest)
}

func TestBuildManifestRejectsNewlines(t *testing.T) {
	_, err := buildManifest([]string{"/tmp/bad\nname.mp3"})
	assert.ErrorIs(t, err, ErrUnsafePath)
}
