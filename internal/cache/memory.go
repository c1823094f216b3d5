package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCache wraps hashicorp/golang-lru/v2/expirable without a TTL, so
// entries only leave through size-based eviction.
type memoryCache struct {
	inner *lru.LRU[string, string]
}

func newMemoryCache(size int, onEvict EvictCallback) *memoryCache {
	var evict func(string, string)
	if onEvict != nil {
		evict = func(key, value string) {
			onEvict(key, value)
		}
	}
	return &memoryCache{
		inner: lru.NewLRU[string, string](size, evict, 0),
	}
}

func (m *memoryCache) Get(key string) (string, bool) {
	return m.inner.Get(key)
}

func (m *memoryCache) Set(key, value string) {
	m.inner.Add(key, value)
}

func (m *memoryCache) Contains(key string) bool {
	return m.inner.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.inner.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
