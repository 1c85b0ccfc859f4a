package feed

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/textcast/internal/models"
	"github.com/killallgit/textcast/internal/services/cache"
)

type stubLister struct {
	mu       sync.Mutex
	episodes []models.Episode
	calls    int32
}

func (s *stubLister) ListRecent(ctx context.Context, limit int) ([]models.Episode, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Episode(nil), s.episodes...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubLister) set(episodes ...models.Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes = episodes
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testMetadata() Metadata {
	return Metadata{
		BaseURL:     "https://cast.example.com/",
		PodcastUUID: "abc-123",
		Title:       "Reading List",
		Description: "Articles read aloud",
		Author:      "Textcast",
		Email:       "cast@example.com",
		Language:    "en-us",
	}
}

func episode(id, title string, created time.Time) models.Episode {
	return models.Episode{
		ID:         id,
		Title:      title,
		FileName:   models.EpisodeFileName(id, models.EncodingMP3),
		Duration:   125,
		FileSize:   4096,
		CreatedAt:  created,
		SourceType: models.EpisodeSourceURL,
		SourceURL:  "https://example.com/" + id,
	}
}

func newTestService(lister EpisodeLister, clk *clock) *Service {
	return NewService(lister, cache.NewMemoryCache(0, cache.WithClock(clk.Now)), Options{
		Metadata: testMetadata(),
		TTL:      5 * time.Minute,
		MaxItems: 25,
		Now:      clk.Now,
	})
}

func TestGenerateBuildsFeed(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(
		episode("new", "Newest Article", clk.now.Add(-time.Hour)),
		episode("old", "Older Article", clk.now.Add(-48*time.Hour)),
	)

	doc, err := newTestService(lister, clk).Generate(context.Background())
	require.NoError(t, err)

	body := string(doc)
	assert.Contains(t, body, "<title>Reading List</title>")
	assert.Contains(t, body, "https://cast.example.com/podcast/abc-123")
	assert.Contains(t, body, `url="https://cast.example.com/audio/episode-new.mp3"`)
	assert.Contains(t, body, `type="audio/mpeg"`)
	assert.Less(t, strings.Index(body, "Newest Article"), strings.Index(body, "Older Article"))
	assert.Empty(t, Validate(doc))
}

func TestGenerateServesFromCacheUntilTTL(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)
	ctx := context.Background()

	first, err := svc.Generate(ctx)
	require.NoError(t, err)

	lister.set(episode("b", "Second", clk.now), episode("a", "First", clk.now))
	clk.Advance(4 * time.Minute)

	cached, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))

	clk.Advance(time.Minute)
	fresh, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "Second")
	assert.Equal(t, int32(2), atomic.LoadInt32(&lister.calls))
}

func TestInvalidateForcesRebuild(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)
	ctx := context.Background()

	_, err := svc.Generate(ctx)
	require.NoError(t, err)

	lister.set(episode("b", "Second", clk.now))
	svc.Invalidate()

	doc, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Second")
	assert.NotContains(t, string(doc), "First")
}

// invalidatingLister invalidates the feed while a rebuild is listing.
type invalidatingLister struct {
	stubLister
	svc  *Service
	once sync.Once
}

func (l *invalidatingLister) ListRecent(ctx context.Context, limit int) ([]models.Episode, error) {
	out, err := l.stubLister.ListRecent(ctx, limit)
	l.once.Do(func() {
		l.set(episode("b", "Second", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
		l.svc.Invalidate()
	})
	return out, err
}

func TestInvalidateDuringRebuildIsNotCached(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &invalidatingLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)
	lister.svc = svc
	ctx := context.Background()

	doc, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "First")

	gz, err := svc.GenerateGzip(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, gz)

	doc, err = svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Second")
	assert.NotContains(t, string(doc), "First")
}

func TestConcurrentInvalidateLeavesLatestFeed(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("v0", "Version 0", clk.now))
	svc := newTestService(lister, clk)
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = svc.Generate(ctx)
					_, _ = svc.GenerateGzip(ctx)
				}
			}
		}()
	}

	for i := 1; i <= 50; i++ {
		lister.set(episode("v", "Version "+strings.Repeat("I", i), clk.now))
		svc.Invalidate()
	}
	close(stop)
	wg.Wait()

	doc, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Version "+strings.Repeat("I", 50)+"<")

	gz, err := svc.GenerateGzip(ctx)
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, doc, plain)
}

func TestRefreshAndStats(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)
	ctx := context.Background()

	stats := svc.Stats(ctx)
	assert.False(t, stats.Cached)
	assert.Nil(t, stats.LastGenerated)

	doc, err := svc.Refresh(ctx)
	require.NoError(t, err)

	stats = svc.Stats(ctx)
	assert.True(t, stats.Cached)
	assert.Equal(t, int64(len(doc)), stats.CacheSize)
	require.NotNil(t, stats.LastGenerated)
	assert.Equal(t, clk.Now(), *stats.LastGenerated)
	assert.Equal(t, 300, stats.TTLSeconds)

	count, err := svc.EpisodeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := svc.LatestEpisode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", latest.ID)
}

func TestLatestEpisodeEmpty(t *testing.T) {
	clk := &clock{now: time.Now()}
	latest, err := newTestService(&stubLister{}, clk).LatestEpisode(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGenerateGzip(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)

	compressed, err := svc.GenerateGzip(context.Background())
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)

	doc, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc, plain)
}

func TestConcurrentGenerateSharesRebuild(t *testing.T) {
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	lister := &stubLister{}
	lister.set(episode("a", "First", clk.now))
	svc := newTestService(lister, clk)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Generate(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&lister.calls), int32(20))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&lister.calls), int32(1))
}

func TestValidateWarnings(t *testing.T) {
	warnings := Validate([]byte(`<feed><title>x</title></feed>`))
	assert.Contains(t, warnings, "missing XML declaration")
	assert.Contains(t, warnings, "root element is not <rss>")
	assert.Contains(t, warnings, "missing iTunes namespace")
	assert.Contains(t, warnings, "missing <channel> element")
}
