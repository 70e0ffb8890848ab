package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheKey_Deterministic(t *testing.T) {
	data := []byte("same bytes")

	if cacheKey(data, 0.5, 2) != cacheKey(data, 0.5, 2) {
		t.Error("identical bytes and parameters must map to the same key")
	}
	if cacheKey(data, 0.5, 2) == cacheKey(data, 0.6, 2) {
		t.Error("different thresholds must map to different keys")
	}
	if cacheKey(data, 0.5, 2) == cacheKey(data, 0.5, 3) {
		t.Error("different cluster counts must map to different keys")
	}
	if cacheKey(data, 0.5, 2) == cacheKey([]byte("other bytes"), 0.5, 2) {
		t.Error("different bytes must map to different keys")
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	result := &AnalysisResult{IsWhiteBackground: true, Confidence: 1.0}

	if _, ok := cache.Get(ctx, "missing"); ok {
		t.Error("empty cache should miss")
	}

	cache.Set(ctx, "k", result, time.Minute)
	got, ok := cache.Get(ctx, "k")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got.IsWhiteBackground != true || got.Confidence != 1.0 {
		t.Errorf("got %+v, want the stored result", got)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "k", &AnalysisResult{}, 10*time.Millisecond)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Fatal("entry should be present before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be evicted on read, have %d entries", cache.Len())
	}
}

func TestMemoryCache_NoExpiryWithZeroTTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "k", &AnalysisResult{}, 0)
	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Error("zero TTL entries must not expire")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%8)
			for j := 0; j < 100; j++ {
				cache.Set(ctx, key, &AnalysisResult{Confidence: float64(n)}, time.Minute)
				if got, ok := cache.Get(ctx, key); ok && got == nil {
					t.Error("hit returned a nil result")
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNopCache(t *testing.T) {
	var cache NopCache
	ctx := context.Background()

	cache.Set(ctx, "k", &AnalysisResult{}, time.Minute)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("NopCache must never hit")
	}
}
