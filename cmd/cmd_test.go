package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a sandboxed data directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TEXTCAST_STORAGE_METADATA_FILE", filepath.Join(dir, "episodes.json"))
	t.Setenv("TEXTCAST_STORAGE_AUDIO_DIR", filepath.Join(dir, "audio"))
	t.Setenv("TEXTCAST_TTS_PROVIDER", "none")
	t.Setenv("TEXTCAST_PROCESSING_FFMPEG_PATH", filepath.Join(dir, "no-ffmpeg"))
	t.Setenv("TEXTCAST_PROCESSING_FFPROBE_PATH", filepath.Join(dir, "no-ffprobe"))
	return dir
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{"root command without args shows help", []string{}, false, "Textcast"},
		{"root command with --help", []string{"--help"}, false, "Available Commands:"},
		{"root command with invalid flag", []string{"--invalid-flag"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedOutput != "" {
				assert.Contains(t, out, tt.expectedOutput)
			}
		})
	}
}

func TestLogFlags(t *testing.T) {
	cmd := NewRootCmd()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("json-logs"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	assert.NoError(t, setupLogging("debug", true))
	assert.NoError(t, setupLogging("", false))
	assert.Error(t, setupLogging("loud", false))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "v"+Version+"\n", out)

	out, err = execute(t, "", "version", "--short=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version:")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatDuration(tt.seconds))
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Title"}, [][]string{{"a1", "First"}, {"b2"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "b2")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestEpisodesAndStorageOnEmptyStore(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "", "episodes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No episodes.")

	_, err = execute(t, "", "episodes", "show", "missing")
	assert.Error(t, err)

	_, err = execute(t, "", "episodes", "delete", "missing")
	assert.Error(t, err)

	out, err = execute(t, "", "storage", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Episodes")

	out, err = execute(t, "", "storage", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "consistent")
}

func TestStorageVerifyAndCleanupOrphans(t *testing.T) {
	dir := sandbox(t)
	audioDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	orphan := filepath.Join(audioDir, "episode-stray.mp3")
	require.NoError(t, os.WriteFile(orphan, []byte("x"), 0o644))
	hourAgo := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(orphan, hourAgo, hourAgo))
	// inside the default grace period, as if synthesis just wrote it
	fresh := filepath.Join(audioDir, "episode-fresh.mp3")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	out, err := execute(t, "", "storage", "verify")
	assert.Error(t, err)
	assert.Contains(t, out, "episode-stray.mp3")

	out, err = execute(t, "", "storage", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 orphaned audio file(s)")
	assert.NoFileExists(t, orphan)
	assert.FileExists(t, fresh)
}

func TestGenerateDryRunFromStdin(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "Dr. Smith reviewed the API.", "generate", "--title", "Notes", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Title:      Notes")
	assert.Contains(t, out, "Strategy:   single (1 chunk(s))")
	assert.Contains(t, out, "neutral-wavenet")
}

func TestGenerateWithoutProviderFails(t *testing.T) {
	dir := sandbox(t)
	input := filepath.Join(dir, "article.md")
	require.NoError(t, os.WriteFile(input, []byte("Hello there."), 0o644))

	_, err := execute(t, "", "generate", input, "--dry-run=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
