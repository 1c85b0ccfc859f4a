package feed

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnMetadataReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "episodes.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	var fired int32
	w, err := NewWatcher(target, 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	require.NoError(t, err)
	defer w.Close()

	// unrelated files do not trigger
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	tmp := filepath.Join(dir, "episodes.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"episodes":[]}`), 0o644))
	require.NoError(t, os.Rename(tmp, target))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fired) >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "episodes.json"), time.Millisecond, func() {})
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
