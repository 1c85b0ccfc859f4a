package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// IntegrityReport compares the metadata with the audio directory.
type IntegrityReport struct {
	Valid         bool     `json:"valid"`
	Issues        []string `json:"issues"`
	MissingFiles  []string `json:"missingFiles"`
	OrphanedFiles []string `json:"orphanedFiles"`
}

// MaintenanceReport is the outcome of Maintenance.
type MaintenanceReport struct {
	OrphansRemoved int      `json:"orphansRemoved"`
	Valid          bool     `json:"valid"`
	Issues         []string `json:"issues"`
}

// VerifyIntegrity reports episodes whose audio file is missing and audio
// files no episode refers to. It changes nothing.
func (s *Store) VerifyIntegrity(ctx context.Context) (*IntegrityReport, error) {
	md, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.verify(md)
}

func (s *Store) verify(md *models.EpisodesMetadata) (*IntegrityReport, error) {
	report := &IntegrityReport{
		Issues:        []string{},
		MissingFiles:  []string{},
		OrphanedFiles: []string{},
	}

	known := make(map[string]bool, len(md.Episodes))
	for _, ep := range md.Episodes {
		known[ep.FileName] = true
		path := s.audioPath(ep)
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, apperrors.FileError("stat", path, err)
			}
			report.MissingFiles = append(report.MissingFiles, path)
			report.Issues = append(report.Issues, fmt.Sprintf("missing audio file for episode %s: %s", ep.ID, path))
		}
	}

	entries, err := os.ReadDir(s.opts.AudioDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, apperrors.FileError("read", s.opts.AudioDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isAudioFile(entry.Name()) || known[entry.Name()] {
			continue
		}
		path := filepath.Join(s.opts.AudioDir, entry.Name())
		report.OrphanedFiles = append(report.OrphanedFiles, path)
		report.Issues = append(report.Issues, fmt.Sprintf("orphaned audio file: %s", path))
	}
	sort.Strings(report.OrphanedFiles)

	report.Valid = len(report.MissingFiles) == 0 && len(report.OrphanedFiles) == 0
	return report, nil
}

func isAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range models.AudioExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// CleanupOrphans deletes every orphaned audio file and returns how many were
// removed. Running it again on a clean store returns 0.
//
// Orphans that may still be on their way into the store are kept: files
// younger than the orphan grace period, and files whose episode still has a
// synthesis scratch directory.
func (s *Store) CleanupOrphans(ctx context.Context) (int, error) {
	removed := 0
	err := s.withLock(ctx, func() error {
		md, err := s.load()
		if err != nil {
			return err
		}
		report, err := s.verify(md)
		if err != nil {
			return err
		}
		inFlight := s.synthesesInFlight()
		for _, path := range report.OrphanedFiles {
			if s.pending(path, inFlight) {
				log.Debug("keeping orphan from a synthesis in progress", "file", path)
				continue
			}
			if err := os.Remove(path); err != nil {
				if !os.IsNotExist(err) {
					log.Warn("failed to delete orphaned file", "file", path, "error", err)
				}
				continue
			}
			removed++
			log.Info("deleted orphaned file", "file", path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// synthesesInFlight returns the names of the synthesis scratch directories
// in the audio directory.
func (s *Store) synthesesInFlight() []string {
	entries, err := os.ReadDir(s.opts.AudioDir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), models.ScratchDirPrefix) {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs
}

// pending reports whether an orphaned file may still be saved.
func (s *Store) pending(path string, inFlight []string) bool {
	name := filepath.Base(path)
	if id, ok := episodeID(name); ok {
		for _, dir := range inFlight {
			if strings.HasPrefix(dir, models.ScratchDirPrefix+id+"-") {
				return true
			}
		}
	}
	if s.opts.OrphanGrace <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) < s.opts.OrphanGrace
}

// episodeID extracts the id from an "episode-<id>.<ext>" file name.
func episodeID(name string) (string, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	id := strings.TrimPrefix(base, "episode-")
	if id == base || id == "" {
		return "", false
	}
	return id, true
}

// Maintenance removes orphans and then verifies what remains.
func (s *Store) Maintenance(ctx context.Context) (*MaintenanceReport, error) {
	removed, err := s.CleanupOrphans(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.VerifyIntegrity(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("storage maintenance complete", "orphansRemoved", removed, "valid", report.Valid)
	return &MaintenanceReport{
		OrphansRemoved: removed,
		Valid:          report.Valid,
		Issues:         report.Issues,
	}, nil
}
