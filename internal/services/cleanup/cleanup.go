// Package cleanup removes scratch artifacts left behind by interrupted
// synthesis runs and metadata writes.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/killallgit/textcast/internal/models"
)

// Scratch name patterns. Directories from chunked synthesis, concat
// manifests from ffmpeg and temp files from atomic metadata writes.
const (
	synthDirPrefix   = models.ScratchDirPrefix
	manifestPrefix   = "concat-"
	metadataTmpInfix = ".tmp-"
)

// Service periodically sweeps stale scratch artifacts
type Service struct {
	audioDir        string
	metadataFile    string
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new cleanup service
func NewService(audioDir, metadataFile string, maxAge, cleanupInterval time.Duration) *Service {
	return &Service{
		audioDir:        audioDir,
		metadataFile:    metadataFile,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one sweep immediately and then one per interval until Stop or
// ctx cancellation.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.Sweep()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				log.Info("cleanup service stopped")
				return
			}
		}
	}()

	log.Info("cleanup service started", "interval", s.cleanupInterval, "maxAge", s.maxAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Sweep removes scratch artifacts older than maxAge and returns how many were
// removed. Younger artifacts may belong to work still in progress.
func (s *Service) Sweep() int {
	removed := 0

	entries, err := os.ReadDir(s.audioDir)
	if err != nil && !os.IsNotExist(err) {
		log.Warn("cleanup could not read audio directory", "dir", s.audioDir, "error", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		isScratch := (entry.IsDir() && strings.HasPrefix(name, synthDirPrefix)) ||
			(!entry.IsDir() && strings.HasPrefix(name, manifestPrefix) && strings.HasSuffix(name, ".txt"))
		if isScratch && s.remove(filepath.Join(s.audioDir, name), entry) {
			removed++
		}
	}

	if s.metadataFile != "" {
		dir := filepath.Dir(s.metadataFile)
		prefix := filepath.Base(s.metadataFile) + metadataTmpInfix
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			log.Warn("cleanup could not read metadata directory", "dir", dir, "error", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) && s.remove(filepath.Join(dir, entry.Name()), entry) {
				removed++
			}
		}
	}

	if removed > 0 {
		log.Info("removed stale scratch artifacts", "count", removed)
	}
	return removed
}

func (s *Service) remove(path string, entry os.DirEntry) bool {
	info, err := entry.Info()
	if err != nil {
		return false
	}
	if s.now().Sub(info.ModTime()) <= s.maxAge {
		return false
	}

	log.Debug("removing stale scratch artifact", "path", path)
	if err := os.RemoveAll(path); err != nil {
		log.Warn("failed to remove scratch artifact", "path", path, "error", err)
		return false
	}
	return true
}
