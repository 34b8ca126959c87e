package services

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds how many distinct prompt pairs are memoized
// before the least-recently-used entry is evicted.
const DefaultCacheSize = 50

type promptKey struct {
	system string
	user   string
}

// PromptCache memoizes text-generation results keyed by the exact
// (system message, user message) pair, so repeated queries don't pay
// for redundant completion calls.
type PromptCache struct {
	mu  sync.Mutex
	lru *lru.Cache[promptKey, string]
}

// NewPromptCache creates a cache bounded to the given number of entries.
func NewPromptCache(capacity int) (*PromptCache, error) {
	cache, err := lru.New[promptKey, string](capacity)
	if err != nil {
		return nil, err
	}
	return &PromptCache{lru: cache}, nil
}

// GetOrCompute returns the cached result for the prompt pair, invoking
// compute on a miss and storing its result. The lock is not held while
// compute runs, so the two sides of a comparison can generate in
// parallel; concurrent misses on the same key may compute twice, with
// the later result kept. Failed computations are not cached.
func (c *PromptCache) GetOrCompute(systemMessage, userMessage string, compute func() (string, error)) (string, error) {
	key := promptKey{system: systemMessage, user: userMessage}

	c.mu.Lock()
	if value, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := compute()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.lru.Add(key, value)
	c.mu.Unlock()
	return value, nil
}

// Len reports the current number of cached entries.
func (c *PromptCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
