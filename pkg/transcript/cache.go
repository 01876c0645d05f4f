package transcript

import (
	"sync"
)

// Parsed is the cached representation of one transcript: metadata from the
// store plus the parsed utterances and legend speaker list. Content is
// immutable for the lifetime of a session, so entries never need explicit
// invalidation.
type Parsed struct {
	Metadata   map[string]string `json:"metadata"`
	Utterances []Utterance       `json:"utterances"`
	Speakers   []string          `json:"speakers"`
}

const DefaultCacheSize = 8

// Cache is a bounded LRU keyed by document identifier. Reads and writes
// happen outside of network calls (fetch-then-cache), so operations are
// short and a single mutex is enough.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Parsed
	order   []string
	maxSize int
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[string]*Parsed),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns the cached transcript and marks it most-recently-used.
func (c *Cache) Get(id string) (*Parsed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[id]
	if !exists {
		return nil, false
	}
	c.moveToEnd(id)
	return entry, true
}

// Put inserts or overwrites a transcript and marks it most-recently-used.
// A new distinct key can exceed capacity by at most one, so a single
// eviction of the least-recently-used entry restores the bound.
func (c *Cache) Put(id string, value *Parsed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; exists {
		c.entries[id] = value
		c.moveToEnd(id)
		return
	}

	c.entries[id] = value
	c.order = append(c.order, id)
	if len(c.entries) > c.maxSize {
		c.evictOldest()
	}
}

// GetOrCompute returns the cached transcript, or calls compute to fetch and
// parse it. Failures are propagated and never cached: a missing document
// must not turn into a false hit later. Concurrent callers for the same
// missing key may both compute; both produce the same value from the same
// source, so last write wins.
func (c *Cache) GetOrCompute(id string, compute func(id string) (*Parsed, error)) (*Parsed, error) {
	if cached, ok := c.Get(id); ok {
		return cached, nil
	}

	value, err := compute(id)
	if err != nil {
		return nil, err
	}

	c.Put(id, value)
	return value, nil
}

// Len reports the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *Cache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, id)
}
