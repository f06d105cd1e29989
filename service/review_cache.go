package service

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/revu/domain"
)

// CacheKey derives the content-addressed cache key for a review: the XOR of
// the content hash and the hash of the sorted rule-id set. Identical content
// reviewed under a different rule set therefore misses the cache.
func CacheKey(content []byte, ruleIDs []string) string {
	ids := make([]string, len(ruleIDs))
	copy(ids, ruleIDs)
	sort.Strings(ids)

	contentSum := sha256.Sum256(content)
	ruleSum := sha256.Sum256([]byte(strings.Join(ids, "\n")))

	var key [sha256.Size]byte
	for i := range key {
		key[i] = contentSum[i] ^ ruleSum[i]
	}
	return hex.EncodeToString(key[:])
}

type cacheEntry struct {
	key       string
	result    *domain.ReviewResult
	createdAt time.Time
	ttl       time.Duration
}

func (e *cacheEntry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.createdAt) > e.ttl
}

// MemoryCache is the in-process review cache: a map plus LRU list guarded by
// a single mutex. TTL expiry is checked lazily on Get; a hard capacity bound
// evicts the least recently used entry on Put.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	capacity int

	// persistDir, when set, mirrors entries to disk keyed by the same
	// hash so cold starts can reuse warm results. Persisted entries
	// re-validate TTL on load.
	persistDir string

	now func() time.Time
}

// NewMemoryCache creates a cache bounded to capacity entries
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

// WithPersistDir enables disk persistence under dir
func (c *MemoryCache) WithPersistDir(dir string) *MemoryCache {
	c.persistDir = dir
	return c
}

// Get returns the cached result for key, or (nil, false) on miss or expiry
func (c *MemoryCache) Get(key string) (*domain.ReviewResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return c.loadPersistedLocked(key)
	}
	entry := elem.Value.(*cacheEntry)
	if entry.expired(c.now()) {
		c.removeLocked(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.result, true
}

// Put stores a result under key with the given TTL (0 = no expiry)
func (c *MemoryCache) Put(key string, result *domain.ReviewResult, ttl time.Duration) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.result = result
		entry.createdAt = c.now()
		entry.ttl = ttl
		c.order.MoveToFront(elem)
	} else {
		entry := &cacheEntry{key: key, result: result, createdAt: c.now(), ttl: ttl}
		c.entries[key] = c.order.PushFront(entry)
		for len(c.entries) > c.capacity {
			c.removeLocked(c.order.Back())
		}
	}

	c.persistLocked(key, result, ttl)
}

// Len returns the number of live in-memory entries
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
}

// persistedEntry is the on-disk cache entry shape
type persistedEntry struct {
	Key        string               `json:"key"`
	Result     *domain.ReviewResult `json:"result"`
	CreatedAt  time.Time            `json:"created_at"`
	TTLSeconds int64                `json:"ttl_seconds"`
}

func (c *MemoryCache) persistLocked(key string, result *domain.ReviewResult, ttl time.Duration) {
	if c.persistDir == "" {
		return
	}
	entry := persistedEntry{
		Key:        key,
		Result:     result,
		CreatedAt:  c.now(),
		TTLSeconds: int64(ttl.Seconds()),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.persistDir, 0o755); err != nil {
		return
	}
	// Best effort: persistence failures never fail a review
	_ = os.WriteFile(c.persistPath(key), data, 0o644)
}

func (c *MemoryCache) loadPersistedLocked(key string) (*domain.ReviewResult, bool) {
	if c.persistDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.persistPath(key))
	if err != nil {
		return nil, false
	}
	var entry persistedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	ttl := time.Duration(entry.TTLSeconds) * time.Second
	if ttl > 0 && c.now().Sub(entry.CreatedAt) > ttl {
		_ = os.Remove(c.persistPath(key))
		return nil, false
	}
	// Promote into memory so subsequent hits skip the disk
	e := &cacheEntry{key: key, result: entry.Result, createdAt: entry.CreatedAt, ttl: ttl}
	c.entries[key] = c.order.PushFront(e)
	for len(c.entries) > c.capacity {
		c.removeLocked(c.order.Back())
	}
	return entry.Result, true
}

func (c *MemoryCache) persistPath(key string) string {
	return filepath.Join(c.persistDir, key+".json")
}

// NoOpCache disables caching; used in tests and when configuration turns
// the cache off.
type NoOpCache struct{}

func (NoOpCache) Get(string) (*domain.ReviewResult, bool)         { return nil, false }
func (NoOpCache) Put(string, *domain.ReviewResult, time.Duration) {}
