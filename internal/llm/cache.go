package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached response.
type cacheEntry struct {
	expiry   time.Time
	response string
}

// responseCache provides thread-safe caching of responses keyed by prompt.
type responseCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResponseCache creates a new cache with the specified TTL.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(prompt, systemPrompt string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// get retrieves a response if it exists and hasn't expired.
func (c *responseCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return "", false
	}
	return entry.response, true
}

// set stores a response and drops any expired entries.
func (c *responseCache) set(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{response: response, expiry: now.Add(c.ttl)}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cachingClient answers repeated identical prompts from memory.
type cachingClient struct {
	next  Client
	cache *responseCache
}

func (c *cachingClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	key := cacheKey(prompt, systemPrompt)
	if resp, ok := c.cache.get(key); ok {
		return resp, nil
	}

	resp, err := c.next.Analyze(ctx, prompt, systemPrompt)
	if err != nil {
		return "", err
	}
	c.cache.set(key, resp)
	return resp, nil
}
