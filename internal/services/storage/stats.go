package storage

import (
	"context"
	"time"
)

// Stats summarizes the stored episodes.
type Stats struct {
	TotalEpisodes   int        `json:"totalEpisodes"`
	TotalDuration   int        `json:"totalDuration"`
	TotalSize       int64      `json:"totalSize"`
	TotalDownloads  int        `json:"totalDownloads"`
	AverageDuration int        `json:"averageDuration"`
	AverageSize     int64      `json:"averageSize"`
	Oldest          *time.Time `json:"oldestEpisode,omitempty"`
	Newest          *time.Time `json:"newestEpisode,omitempty"`
	MaxEpisodes     int        `json:"maxEpisodes"`
}

// Stats folds over the current metadata. Nothing is cached.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	md, err := s.load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalEpisodes: len(md.Episodes),
		MaxEpisodes:   s.opts.MaxEpisodes,
	}
	for _, ep := range md.Episodes {
		stats.TotalDuration += ep.Duration
		stats.TotalSize += ep.FileSize
		stats.TotalDownloads += ep.DownloadCount

		created := ep.CreatedAt
		if stats.Oldest == nil || created.Before(*stats.Oldest) {
			stats.Oldest = &created
		}
		if stats.Newest == nil || created.After(*stats.Newest) {
			stats.Newest = &created
		}
	}

	if n := len(md.Episodes); n > 0 {
		stats.AverageDuration = stats.TotalDuration / n
		stats.AverageSize = stats.TotalSize / int64(n)
	}
	return stats, nil
}
