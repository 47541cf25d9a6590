package resource

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCache(maxSize int, ttl time.Duration) *Cache {
	return NewCache(CacheConfig{MaxSize: maxSize, TTL: ttl, MaxSizePerResource: 1024}, nil)
}

func TestCacheHitRefreshesTimestamp(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put("resource://file/a.txt", []byte("aaaa"), "text/plain")
	now = now.Add(100 * time.Second)
	content, mimeType, ok := cache.Get("resource://file/a.txt")
	assert.True(t, ok)
	assert.Equal(t, []byte("aaaa"), content)
	assert.Equal(t, "text/plain", mimeType)

	// the access above refreshed the entry, so another ttl window applies
	now = now.Add(250 * time.Second)
	_, _, ok = cache.Get("resource://file/a.txt")
	assert.True(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put("resource://file/a.txt", []byte("aaaa"), "text/plain")
	now = now.Add(300 * time.Second)
	_, _, ok := cache.Get("resource://file/a.txt")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheIdempotentPut(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	cache.Put("resource://file/a.txt", []byte("v1"), "text/plain")
	cache.Put("resource://file/a.txt", []byte("v2"), "text/plain")
	assert.Equal(t, 1, cache.Len())
	content, _, ok := cache.Get("resource://file/a.txt")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), content)
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	now := time.Now()
	cache.now = func() time.Time { now = now.Add(time.Millisecond); return now }

	cache.Put("resource://file/a.txt", []byte("a"), "text/plain")
	cache.Put("resource://file/b.txt", []byte("b"), "text/plain")
	cache.Put("resource://file/c.txt", []byte("c"), "text/plain")

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Contains("resource://file/a.txt"))
	assert.True(t, cache.Contains("resource://file/b.txt"))
	assert.True(t, cache.Contains("resource://file/c.txt"))
}

func TestCacheEvictionFollowsAccessOrder(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	now := time.Now()
	cache.now = func() time.Time { now = now.Add(time.Millisecond); return now }

	cache.Put("resource://file/a.txt", []byte("a"), "text/plain")
	cache.Put("resource://file/b.txt", []byte("b"), "text/plain")
	// touching a makes b the LRU entry
	_, _, ok := cache.Get("resource://file/a.txt")
	assert.True(t, ok)

	cache.Put("resource://file/c.txt", []byte("c"), "text/plain")
	assert.True(t, cache.Contains("resource://file/a.txt"))
	assert.False(t, cache.Contains("resource://file/b.txt"))
}

func TestCacheEvictionTieBreaksByInsertionOrder(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	fixed := time.Now()
	cache.now = func() time.Time { return fixed }

	cache.Put("resource://file/a.txt", []byte("a"), "text/plain")
	cache.Put("resource://file/b.txt", []byte("b"), "text/plain")
	cache.Put("resource://file/c.txt", []byte("c"), "text/plain")

	assert.False(t, cache.Contains("resource://file/a.txt"))
	assert.True(t, cache.Contains("resource://file/b.txt"))
}

func TestCacheBound(t *testing.T) {
	cache := newTestCache(3, 300*time.Second)
	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("resource://file/%d.txt", i), []byte("x"), "text/plain")
	}
	assert.Equal(t, 3, cache.Len())
}

func TestCacheGetReturnsCopy(t *testing.T) {
	cache := newTestCache(2, 300*time.Second)
	cache.Put("resource://file/a.txt", []byte("original"), "text/plain")

	content, _, ok := cache.Get("resource://file/a.txt")
	assert.True(t, ok)
	content[0] = 'X'

	again, _, ok := cache.Get("resource://file/a.txt")
	assert.True(t, ok)
	assert.Equal(t, "original", string(again), "a caller mutating its copy must not corrupt the cached bytes")
}

func TestCacheSkipsOversizedContent(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 2, TTL: 300 * time.Second, MaxSizePerResource: 4}, nil)
	cache.Put("resource://file/big.bin", []byte("123456789"), "application/octet-stream")
	assert.Equal(t, 0, cache.Len())
}
