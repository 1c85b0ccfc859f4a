package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/killallgit/textcast/internal/models"
	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// load reads the metadata document. A missing file is an empty store; an
// unreadable or unparseable one is a FILE_ERROR.
func (s *Store) load() (*models.EpisodesMetadata, error) {
	data, err := os.ReadFile(s.opts.MetadataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.EpisodesMetadata{Episodes: []models.Episode{}}, nil
		}
		return nil, apperrors.FileError("read", s.opts.MetadataFile, err)
	}

	var md models.EpisodesMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, apperrors.FileError("parse", s.opts.MetadataFile, err)
	}
	if md.Episodes == nil {
		md.Episodes = []models.Episode{}
	}
	md.TotalCount = len(md.Episodes)
	return &md, nil
}

// write replaces the metadata document atomically: the new content goes to a
// temp file in the same directory, is synced, then renamed over the old one.
func (s *Store) write(md *models.EpisodesMetadata) error {
	md.TotalCount = len(md.Episodes)
	md.LastUpdated = s.now().UTC()

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encoding episode metadata")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.opts.MetadataFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.FileError("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.opts.MetadataFile)+".tmp-*")
	if err != nil {
		return apperrors.FileError("create", dir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.FileError("write", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.FileError("sync", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.FileError("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.opts.MetadataFile); err != nil {
		return apperrors.FileError("rename", s.opts.MetadataFile, err)
	}
	committed = true
	return nil
}

func newestFirst(md *models.EpisodesMetadata) []models.Episode {
	out := make([]models.Episode, len(md.Episodes))
	copy(out, md.Episodes)
	return out
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}
