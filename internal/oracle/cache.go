package oracle

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached estimate response.
type cacheEntry struct {
	expiry   time.Time
	response EstimateResponse
}

// estimateCache provides thread-safe caching of estimate responses so
// repeated products in a batch do not hit the oracle twice.
type estimateCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newEstimateCache creates a new cache with the specified TTL.
func newEstimateCache(ttl time.Duration) *estimateCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &estimateCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// cacheKey derives a stable key from the product facts sent to the oracle.
func cacheKey(description, imageURL string) string {
	h := sha256.New()
	h.Write([]byte(description))
	h.Write([]byte{0})
	h.Write([]byte(imageURL))
	return hex.EncodeToString(h.Sum(nil))
}

// get retrieves a response from the cache if it exists and hasn't expired.
func (c *estimateCache) get(key string) (EstimateResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return EstimateResponse{}, false
	}

	if time.Now().After(entry.expiry) {
		return EstimateResponse{}, false
	}

	return entry.response, true
}

// set stores a response in the cache.
func (c *estimateCache) set(key string, resp EstimateResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		response: resp,
		expiry:   time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *estimateCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *estimateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *estimateCache) Close() {
	close(c.stopCh)
}
