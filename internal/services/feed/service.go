// Package feed generates the podcast feed document and caches it in front of
// the episode store.
package feed

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/singleflight"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/cache"
)

const (
	cacheKey     = "podcast-feed"
	gzipCacheKey = "podcast-feed.gz"

	DefaultTTL = 5 * time.Minute
)

// EpisodeLister is the read side of the episode store.
type EpisodeLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.Episode, error)
}

// Options configures a Service.
type Options struct {
	Metadata Metadata
	TTL      time.Duration
	MaxItems int
	Now      func() time.Time
}

// Stats describes the cached feed.
type Stats struct {
	Cached        bool       `json:"cached"`
	CacheSize     int64      `json:"cacheSize"`
	LastGenerated *time.Time `json:"lastGenerated,omitempty"`
	Hits          int64      `json:"hits"`
	Misses        int64      `json:"misses"`
	TTLSeconds    int        `json:"ttlSeconds"`
}

// Service serves the feed from a short-TTL cache. Concurrent misses share
// one rebuild, and an invalidation during a rebuild keeps the stale result
// out of the cache.
type Service struct {
	episodes EpisodeLister
	cache    *cache.MemoryCache
	opts     Options
	group    singleflight.Group

	generation atomic.Uint64

	mu            sync.RWMutex
	lastGenerated time.Time
}

// NewService creates a feed service over episodes.
func NewService(episodes EpisodeLister, c *cache.MemoryCache, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if c == nil {
		c = cache.NewMemoryCache(0, cache.WithClock(opts.Now))
	}
	return &Service{episodes: episodes, cache: c, opts: opts}
}

// Metadata returns the channel metadata.
func (s *Service) Metadata() Metadata {
	return s.opts.Metadata
}

// Generate returns the feed document, rebuilding it when the cached copy is
// missing or expired.
func (s *Service) Generate(ctx context.Context) ([]byte, error) {
	doc, _, err := s.generate(ctx)
	return doc, err
}

// built is a rebuilt document and the generation it was built at.
type built struct {
	doc []byte
	gen uint64
}

// generate returns the document and a generation no newer than the one it
// reflects. Rebuilds are shared per generation, so callers arriving after an
// invalidation never join a rebuild that started before it.
func (s *Service) generate(ctx context.Context) ([]byte, uint64, error) {
	gen := s.generation.Load()
	if doc, ok := s.cache.Get(ctx, cacheKey); ok {
		return doc, gen, nil
	}

	v, err, _ := s.group.Do(cacheKey+"@"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		episodes, err := s.episodes.ListRecent(ctx, s.opts.MaxItems)
		if err != nil {
			return nil, err
		}

		now := s.opts.Now()
		doc, err := Build(s.opts.Metadata, episodes, now)
		if err != nil {
			return nil, err
		}

		s.storeIfCurrent(ctx, gen, cacheKey, doc, func() { s.lastGenerated = now })

		log.Debug("feed generated", "episodes", len(episodes), "bytes", len(doc))
		for _, warning := range Validate(doc) {
			log.Warn("feed validation", "warning", warning)
		}
		return built{doc: doc, gen: gen}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	b := v.(built)
	return b.doc, b.gen, nil
}

// GenerateGzip returns the gzip-compressed feed, cached alongside the plain one.
func (s *Service) GenerateGzip(ctx context.Context) ([]byte, error) {
	if doc, ok := s.cache.Get(ctx, gzipCacheKey); ok {
		return doc, nil
	}

	doc, gen, err := s.generate(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(doc); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	s.storeIfCurrent(ctx, gen, gzipCacheKey, buf.Bytes(), nil)
	return buf.Bytes(), nil
}

// storeIfCurrent caches doc unless an invalidation happened since gen was
// read. The check and the write happen under s.mu, which Invalidate also
// holds, so an invalidation cannot slip in between them.
func (s *Service) storeIfCurrent(ctx context.Context, gen uint64, key string, doc []byte, onStore func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		return
	}
	_ = s.cache.Set(ctx, key, doc, s.opts.TTL)
	if onStore != nil {
		onStore()
	}
}

// Invalidate drops the cached feed so the next request rebuilds it.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.generation.Add(1)
	ctx := context.Background()
	_ = s.cache.Delete(ctx, cacheKey)
	_ = s.cache.Delete(ctx, gzipCacheKey)
	s.mu.Unlock()
	log.Debug("feed cache invalidated")
}

// Refresh invalidates and rebuilds the feed.
func (s *Service) Refresh(ctx context.Context) ([]byte, error) {
	s.Invalidate()
	return s.Generate(ctx)
}

// Stats reports on the cached feed.
func (s *Service) Stats(ctx context.Context) Stats {
	cs := s.cache.Stats()
	s.mu.RLock()
	last := s.lastGenerated
	s.mu.RUnlock()

	stats := Stats{
		Cached:     cs.Entries > 0,
		CacheSize:  cs.Size,
		Hits:       cs.Hits,
		Misses:     cs.Misses,
		TTLSeconds: int(s.opts.TTL / time.Second),
	}
	if !last.IsZero() {
		stats.LastGenerated = &last
	}
	return stats
}

// EpisodeCount returns how many episodes the feed would list.
func (s *Service) EpisodeCount(ctx context.Context) (int, error) {
	episodes, err := s.episodes.ListRecent(ctx, s.opts.MaxItems)
	if err != nil {
		return 0, err
	}
	return len(episodes), nil
}

// LatestEpisode returns the newest episode, or nil when there are none.
func (s *Service) LatestEpisode(ctx context.Context) (*models.Episode, error) {
	episodes, err := s.episodes.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(episodes) == 0 {
		return nil, nil
	}
	return &episodes[0], nil
}
