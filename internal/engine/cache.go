package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Cache memoizes analysis results keyed by a content-derived fingerprint.
//
// Implementations must be safe for concurrent use from many simultaneous
// analysis calls and must never block one caller's computation on another
// caller's in-flight work for a different key. Backend failures are not
// surfaced: Get reports a miss and Set becomes a no-op, so the pipeline
// always proceeds to compute directly.
type Cache interface {
	// Get returns the cached result for key and whether it was present.
	Get(ctx context.Context, key string) (*AnalysisResult, bool)

	// Set stores result under key for ttl. A non-positive ttl means the
	// entry does not expire.
	Set(ctx context.Context, key string, result *AnalysisResult, ttl time.Duration)
}

// cacheKey derives the deterministic cache key for an analysis call: a
// SHA-256 fingerprint of the raw input bytes plus the parameters used. Two
// calls with identical bytes and parameters always map to the same key.
func cacheKey(data []byte, threshold float64, numClusters int) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("photocheck:%x:%g:%d", sum, threshold, numClusters)
}

// NopCache is a Cache that never stores anything. It backs engines with
// caching disabled and tests that need recomputation on every call.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*AnalysisResult, bool) { return nil, false }

func (NopCache) Set(context.Context, string, *AnalysisResult, time.Duration) {}

type memoryEntry struct {
	result    *AnalysisResult
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process Cache with per-entry TTL.
//
// Entries are evicted lazily: an expired entry is removed when a Get
// observes it. MemoryCache is safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-memory result cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*AnalysisResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another caller may have
		// replaced the entry meanwhile.
		if current, ok := c.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, key string, result *AnalysisResult, ttl time.Duration) {
	entry := memoryEntry{result: result}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Len reports the number of stored entries, including any not yet evicted
// after expiry.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
