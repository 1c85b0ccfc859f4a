package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL applies when Set is called without a positive TTL.
const DefaultTTL = 5 * time.Minute

// MemoryCache implements an in-memory cache with lazy expiry plus a periodic
// sweep.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
	now   func() time.Time

	size      int64
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

type cacheItem struct {
	value    []byte
	storedAt time.Time
	expiry   time.Time
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(mc *MemoryCache) { mc.now = now }
}

// NewMemoryCache creates a cache that sweeps expired entries every
// sweepInterval. A non-positive interval disables the sweeper.
func NewMemoryCache(sweepInterval time.Duration, opts ...Option) *MemoryCache {
	mc := &MemoryCache{
		items:  make(map[string]*cacheItem),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(mc)
	}

	if sweepInterval > 0 {
		mc.wg.Add(1)
		go mc.sweep(sweepInterval)
	}

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, _, ok := mc.Entry(ctx, key)
	return value, ok
}

// Entry returns a live value together with the time it was stored.
func (mc *MemoryCache) Entry(ctx context.Context, key string) ([]byte, time.Time, bool) {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&mc.misses, 1)
		return nil, time.Time{}, false
	}

	if !mc.now().Before(item.expiry) {
		mc.evict(key, item)
		atomic.AddInt64(&mc.misses, 1)
		return nil, time.Time{}, false
	}

	atomic.AddInt64(&mc.hits, 1)
	return item.value, item.storedAt, true
}

// Set stores a value in the cache with a TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := mc.now()
	item := &cacheItem{
		value:    value,
		storedAt: now,
		expiry:   now.Add(ttl),
	}

	mc.mu.Lock()
	if old, exists := mc.items[key]; exists {
		atomic.AddInt64(&mc.size, -int64(len(old.value)))
	}
	mc.items[key] = item
	atomic.AddInt64(&mc.size, int64(len(value)))
	mc.mu.Unlock()

	atomic.AddInt64(&mc.sets, 1)
	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	if item, exists := mc.items[key]; exists {
		delete(mc.items, key)
		atomic.AddInt64(&mc.size, -int64(len(item.value)))
		atomic.AddInt64(&mc.deletes, 1)
	}
	mc.mu.Unlock()
	return nil
}

// Clear removes all values from the cache
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	mc.items = make(map[string]*cacheItem)
	atomic.StoreInt64(&mc.size, 0)
	mc.mu.Unlock()
	return nil
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() CacheStats {
	mc.mu.RLock()
	entries := len(mc.items)
	mc.mu.RUnlock()

	return CacheStats{
		Hits:      atomic.LoadInt64(&mc.hits),
		Misses:    atomic.LoadInt64(&mc.misses),
		Sets:      atomic.LoadInt64(&mc.sets),
		Deletes:   atomic.LoadInt64(&mc.deletes),
		Evictions: atomic.LoadInt64(&mc.evictions),
		Size:      atomic.LoadInt64(&mc.size),
		Entries:   entries,
	}
}

// Stop gracefully shuts down the cache
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() { close(mc.stopCh) })
	mc.wg.Wait()
}

// evict drops key if it still holds item.
func (mc *MemoryCache) evict(key string, item *cacheItem) {
	mc.mu.Lock()
	if current, exists := mc.items[key]; exists && current == item {
		delete(mc.items, key)
		atomic.AddInt64(&mc.size, -int64(len(item.value)))
		atomic.AddInt64(&mc.evictions, 1)
	}
	mc.mu.Unlock()
}

func (mc *MemoryCache) sweep(interval time.Duration) {
	defer mc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpired()
		case <-mc.stopCh:
			return
		}
	}
}

// removeExpired removes all expired items
func (mc *MemoryCache) removeExpired() {
	now := mc.now()
	mc.mu.Lock()
	for key, item := range mc.items {
		if !now.Before(item.expiry) {
			delete(mc.items, key)
			atomic.AddInt64(&mc.size, -int64(len(item.value)))
			atomic.AddInt64(&mc.evictions, 1)
		}
	}
	mc.mu.Unlock()
}
