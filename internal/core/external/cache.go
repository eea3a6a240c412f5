package external

import (
	"sync"
	"time"

	"recipe-engine/internal/pkg/common"
)

// responseCache 外部 API 回應的短期快取，以請求參數為鍵
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]responseEntry
}

type responseEntry struct {
	recipes   []common.Recipe
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration, now func() time.Time) *responseCache {
	return &responseCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]responseEntry),
	}
}

func (c *responseCache) get(key string) ([]common.Recipe, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.recipes, true
}

func (c *responseCache) set(key string, recipes []common.Recipe) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// 順便清掉已過期的項目
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = responseEntry{recipes: recipes, expiresAt: now.Add(c.ttl)}
}

func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]responseEntry)
}

func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
