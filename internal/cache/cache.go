package cache

import "strings"

// EvictCallback is called when an entry is evicted from a bounded cache.
type EvictCallback func(key, value string)

// Cache is the private lookup state of one subtitle provider. Entries live for
// the whole process and are never invalidated; a bounded cache only drops its
// least recently used entries.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found.
	Get(key string) (string, bool)

	// Set stores a value with the given key. If the key already exists, it is overwritten.
	Set(key, value string)

	// Contains checks whether a key exists in the cache without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the number of entries currently in the cache.
	Len() int

	// Close releases the metrics registered for the cache.
	Close() error
}

// Options holds the configuration needed to create a cache instance.
type Options struct {
	// Size is the maximum number of entries. Zero keeps every entry.
	Size int

	// OnEvict is called when an entry is evicted.
	OnEvict EvictCallback

	// Group is an optional label value used to namespace Prometheus metrics
	// (episodesubs_cache_hits_total, episodesubs_cache_misses_total, etc.).
	// When non-empty the cache is automatically wrapped with metric instrumentation.
	Group string
}

// New creates an in-memory cache. When opts.Group is non-empty the cache is
// wrapped with metric instrumentation: hits, misses and evictions are tracked
// with a "cache" label equal to Group, and a lazy entries collector reports
// Len() at scrape time.
func New(opts Options) Cache {
	if opts.Group == "" {
		return newMemoryCache(opts.Size, opts.OnEvict)
	}

	group := opts.Group
	original := opts.OnEvict
	onEvict := func(key, value string) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(key, value)
		}
	}

	return newInstrumentedCache(newMemoryCache(opts.Size, onEvict), group)
}

// Key joins parts with a NUL byte, which never appears in file paths or
// language codes.
func Key(parts ...string) string {
	return strings.Join(parts, "\x00")
}
