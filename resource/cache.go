package resource

import (
	"log/slog"
	"sync"
	"time"
)

// CacheConfig bounds the resource cache.
type CacheConfig struct {
	MaxSize            int
	TTL                time.Duration
	MaxSizePerResource int64
}

type cacheEntry struct {
	uri       string
	content   []byte
	mimeType  string
	timestamp time.Time
	size      int64
	seq       uint64
}

// Cache is a bounded store of fetched resource content, evicted LRU by last
// access and expired by TTL. All access is internally synchronized.
type Cache struct {
	mux     sync.Mutex
	entries map[string]*cacheEntry
	config  CacheConfig
	logger  *slog.Logger
	seq     uint64
	now     func() time.Time
}

// NewCache creates a cache from config.
func NewCache(config CacheConfig, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: map[string]*cacheEntry{},
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns cached content for uri. A hit requires the entry to be younger
// than the TTL and refreshes its access timestamp.
func (c *Cache) Get(uri string) (content []byte, mimeType string, ok bool) {
	c.mux.Lock()
	defer c.mux.Unlock()
	entry, present := c.entries[uri]
	if !present {
		return nil, "", false
	}
	if c.now().Sub(entry.timestamp) >= c.config.TTL {
		delete(c.entries, uri)
		return nil, "", false
	}
	entry.timestamp = c.now()
	// callers own the returned bytes; the cached copy stays immutable
	content = make([]byte, len(entry.content))
	copy(content, entry.content)
	return content, entry.mimeType, true
}

// Put stores content under uri, evicting the least recently accessed entry
// when at capacity. Oversized content is skipped, not an error.
func (c *Cache) Put(uri string, content []byte, mimeType string) {
	size := int64(len(content))
	if c.config.MaxSizePerResource > 0 && size > c.config.MaxSizePerResource {
		c.logger.Debug("skipping cache, resource too large", "uri", uri, "size", size)
		return
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	if _, present := c.entries[uri]; !present && c.config.MaxSize > 0 {
		for len(c.entries) >= c.config.MaxSize {
			c.evictOldest()
		}
	}
	c.seq++
	c.entries[uri] = &cacheEntry{
		uri:       uri,
		content:   content,
		mimeType:  mimeType,
		timestamp: c.now(),
		size:      size,
		seq:       c.seq,
	}
}

// evictOldest removes the entry with the smallest access timestamp; equal
// timestamps fall back to insertion order. Caller holds the lock.
func (c *Cache) evictOldest() {
	var oldest *cacheEntry
	for _, entry := range c.entries {
		if oldest == nil ||
			entry.timestamp.Before(oldest.timestamp) ||
			(entry.timestamp.Equal(oldest.timestamp) && entry.seq < oldest.seq) {
			oldest = entry
		}
	}
	if oldest == nil {
		return
	}
	c.logger.Debug("evicting cached resource", "uri", oldest.uri)
	delete(c.entries, oldest.uri)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return len(c.entries)
}

// Contains reports whether uri is cached, without refreshing its timestamp.
func (c *Cache) Contains(uri string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	_, ok := c.entries[uri]
	return ok
}
