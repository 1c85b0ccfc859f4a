// Package storage persists episodes: a JSON metadata document plus one audio
// file per episode, with capped retention and integrity checking.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// Options configures a Store.
type Options struct {
	MetadataFile   string
	AudioDir       string
	MaxEpisodes    int
	LockRetries    int
	LockRetryDelay time.Duration

	// OrphanGrace protects audio files younger than this from
	// CleanupOrphans. Synthesis writes its output before Save records it.
	OrphanGrace time.Duration

	// BackgroundIntegrityCheck runs VerifyIntegrity after each save and logs
	// any problems.
	BackgroundIntegrityCheck bool
}

// DefaultOptions returns the stock retention and locking settings.
func DefaultOptions() Options {
	return Options{
		MetadataFile:   "./data/episodes.json",
		AudioDir:       "./data/audio",
		MaxEpisodes:    25,
		LockRetries:    10,
		LockRetryDelay: 100 * time.Millisecond,
	}
}

// Store owns the episode metadata file and the audio directory. Every
// mutation runs under an in-process mutex and the cooperative file lock, so
// concurrent writers are serialized within and across processes. Reads take
// no lock and may observe a snapshot one write behind.
type Store struct {
	opts Options
	mu   sync.Mutex
	lock *fileLock
	now  func() time.Time

	listenersMu sync.RWMutex
	listeners   []func()

	background sync.WaitGroup
}

// NewStore creates a store. Zero-valued options take their defaults.
func NewStore(opts Options) *Store {
	def := DefaultOptions()
	if opts.MetadataFile == "" {
		opts.MetadataFile = def.MetadataFile
	}
	if opts.AudioDir == "" {
		opts.AudioDir = def.AudioDir
	}
	if opts.MaxEpisodes <= 0 {
		opts.MaxEpisodes = def.MaxEpisodes
	}
	if opts.LockRetries <= 0 {
		opts.LockRetries = def.LockRetries
	}
	if opts.LockRetryDelay <= 0 {
		opts.LockRetryDelay = def.LockRetryDelay
	}

	return &Store{
		opts: opts,
		lock: &fileLock{
			path:    opts.MetadataFile + ".lock",
			retries: opts.LockRetries,
			delay:   opts.LockRetryDelay,
		},
		now: time.Now,
	}
}

// MetadataFile returns the path of the metadata document.
func (s *Store) MetadataFile() string {
	return s.opts.MetadataFile
}

// AudioDir returns the audio directory.
func (s *Store) AudioDir() string {
	return s.opts.AudioDir
}

// MaxEpisodes returns the retention cap.
func (s *Store) MaxEpisodes() int {
	return s.opts.MaxEpisodes
}

// OnChange registers fn to run after every committed mutation that changes
// the episode list.
func (s *Store) OnChange(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Wait blocks until background work started by Save has finished.
func (s *Store) Wait() {
	s.background.Wait()
}

func (s *Store) notify() {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, fn := range s.listeners {
		fn()
	}
}

// withLock runs fn inside the write critical section. The file lock is
// always released, whatever fn returns.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lock.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}

func (s *Store) audioPath(ep models.Episode) string {
	return filepath.Join(s.opts.AudioDir, ep.FileName)
}

// Save records a synthesized file as the newest episode, evicting the oldest
// episodes beyond the retention cap. Evicted audio files are removed before
// the metadata is committed.
func (s *Store) Save(ctx context.Context, content models.ProcessedContent, result *models.SynthesisResult, sourceURL string) (*models.Episode, error) {
	if err := validateResult(result); err != nil {
		return nil, err
	}

	title := content.Title
	if title == "" {
		title = result.Title
	}
	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.timestamp()
	}
	filePath := result.FilePath
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}

	episode := models.Episode{
		ID:         result.EpisodeID,
		Title:      title,
		FileName:   result.FileName,
		FilePath:   filePath,
		Duration:   result.Duration,
		FileSize:   result.FileSize,
		CreatedAt:  createdAt,
		SourceType: content.EpisodeSource(),
		SourceURL:  sourceURL,
	}

	var evicted []models.Episode
	err := s.withLock(ctx, func() error {
		md, err := s.load()
		if err != nil {
			return err
		}
		for _, existing := range md.Episodes {
			if existing.ID == episode.ID {
				return apperrors.ValidationError("id", fmt.Sprintf("episode %s already exists", episode.ID))
			}
		}

		md.Episodes = append([]models.Episode{episode}, md.Episodes...)
		if len(md.Episodes) > s.opts.MaxEpisodes {
			evicted = append(evicted, md.Episodes[s.opts.MaxEpisodes:]...)
			md.Episodes = md.Episodes[:s.opts.MaxEpisodes]
			for _, old := range evicted {
				s.removeAudio(old)
			}
		}

		return s.write(md)
	})
	if err != nil {
		return nil, err
	}

	log.Info("episode saved", "id", episode.ID, "title", episode.Title, "bytes", episode.FileSize)
	if len(evicted) > 0 {
		ids := make([]string, 0, len(evicted))
		for _, ep := range evicted {
			ids = append(ids, ep.ID)
		}
		log.Info("evicted episodes", "count", len(evicted), "ids", strings.Join(ids, ","))
	}

	s.notify()
	if s.opts.BackgroundIntegrityCheck {
		s.background.Add(1)
		go s.backgroundIntegrityCheck()
	}

	return &episode, nil
}

func validateResult(result *models.SynthesisResult) error {
	if result == nil {
		return apperrors.ValidationError("result", "must not be nil")
	}
	if result.EpisodeID == "" {
		return apperrors.ValidationError("episodeId", "must be set")
	}
	if result.FileName == "" || filepath.Base(result.FileName) != result.FileName {
		return apperrors.ValidationError("fileName", "must be a bare file name")
	}
	if !strings.HasPrefix(result.FileName, "episode-"+result.EpisodeID+".") {
		return apperrors.ValidationError("fileName", "must be derived from the episode id")
	}
	if result.FilePath != "" && filepath.Base(result.FilePath) != result.FileName {
		return apperrors.ValidationError("filePath", "must end in fileName")
	}
	return nil
}

func (s *Store) backgroundIntegrityCheck() {
	defer s.background.Done()

	report, err := s.VerifyIntegrity(context.Background())
	if err != nil {
		log.Warn("background integrity check failed", "error", err)
		return
	}
	if !report.Valid {
		log.Warn("integrity issues detected",
			"code", apperrors.ErrCodeIntegrity,
			"missing", len(report.MissingFiles),
			"orphaned", len(report.OrphanedFiles))
		for _, issue := range report.Issues {
			log.Warn(issue)
		}
	}
}

// Discard removes the audio file of a synthesis result that Save rejected.
// A file that a stored episode still refers to is kept, so a result that
// collided with an existing episode never takes that episode's audio with it.
func (s *Store) Discard(ctx context.Context, result *models.SynthesisResult) error {
	if result == nil || result.FileName == "" || filepath.Base(result.FileName) != result.FileName {
		return nil
	}
	path := result.FilePath
	if path == "" || filepath.Base(path) != result.FileName {
		path = filepath.Join(s.opts.AudioDir, result.FileName)
	}

	return s.withLock(ctx, func() error {
		md, err := s.load()
		if err != nil {
			return err
		}
		for _, ep := range md.Episodes {
			if ep.ID == result.EpisodeID || ep.FileName == result.FileName {
				log.Warn("keeping audio owned by a stored episode", "id", ep.ID, "file", path)
				return nil
			}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return apperrors.FileError("remove", path, err)
		}
		log.Debug("discarded unsaved audio", "file", path)
		return nil
	})
}

// removeAudio deletes an episode's audio file, logging instead of failing.
func (s *Store) removeAudio(ep models.Episode) {
	path := s.audioPath(ep)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Warn("audio file already missing", "id", ep.ID, "file", path)
			return
		}
		log.Warn("failed to delete audio file", "id", ep.ID, "file", path, "error", err)
	}
}

// Get returns the episode with id or a NOT_FOUND error.
func (s *Store) Get(ctx context.Context, id string) (*models.Episode, error) {
	md, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range md.Episodes {
		if md.Episodes[i].ID == id {
			ep := md.Episodes[i]
			return &ep, nil
		}
	}
	return nil, apperrors.NotFound("episode", id)
}

// GetByFileName returns the episode owning an audio file name.
func (s *Store) GetByFileName(ctx context.Context, fileName string) (*models.Episode, error) {
	md, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range md.Episodes {
		if md.Episodes[i].FileName == fileName {
			ep := md.Episodes[i]
			return &ep, nil
		}
	}
	return nil, apperrors.NotFound("episode", fileName)
}

// ListAll returns every episode, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Episode, error) {
	md, err := s.load()
	if err != nil {
		return nil, err
	}
	return newestFirst(md), nil
}

// ListRecent returns at most limit episodes, newest first. A non-positive
// limit returns everything.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.Episode, error) {
	episodes, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(episodes) > limit {
		episodes = episodes[:limit]
	}
	return episodes, nil
}

// Delete removes an episode and its audio file. It reports false, without
// error, when no episode has id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var removed *models.Episode
	err := s.withLock(ctx, func() error {
		md, err := s.load()
		if err != nil {
			return err
		}
		for i := range md.Episodes {
			if md.Episodes[i].ID == id {
				ep := md.Episodes[i]
				removed = &ep
				md.Episodes = append(md.Episodes[:i], md.Episodes[i+1:]...)
				break
			}
		}
		if removed == nil {
			return nil
		}
		if err := s.write(md); err != nil {
			return err
		}
		s.removeAudio(*removed)
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed == nil {
		return false, nil
	}

	log.Info("episode deleted", "id", id, "title", removed.Title)
	s.notify()
	return true, nil
}

// RecordDownload increments an episode's download counter.
func (s *Store) RecordDownload(ctx context.Context, id string) error {
	return s.withLock(ctx, func() error {
		md, err := s.load()
		if err != nil {
			return err
		}
		for i := range md.Episodes {
			if md.Episodes[i].ID == id {
				md.Episodes[i].DownloadCount++
				return s.write(md)
			}
		}
		return apperrors.NotFound("episode", id)
	})
}
