package merge

import (
	"strconv"
	"sync"

	"github.com/ukaji3/sheetview-go/pkg/sheetview/address"
	"golang.org/x/sync/singleflight"
)

// Cache stores indexes by structural key.
type Cache interface {
	// Lookup returns the index stored under key, calling build and storing
	// its result when there is none.
	Lookup(key uint64, build func() *Index) *Index
}

// MemoryCache is an append-only, concurrency-safe Cache. Concurrent lookups
// of the same missing key share a single build.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uint64]*Index
	group   singleflight.Group
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[uint64]*Index)}
}

// Lookup implements Cache.
func (c *MemoryCache) Lookup(key uint64, build func() *Index) *Index {
	c.mu.RLock()
	x, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return x
	}

	v, _, _ := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		c.mu.RLock()
		x, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return x, nil
		}
		x = build()
		c.mu.Lock()
		c.entries[key] = x
		c.mu.Unlock()
		return x, nil
	})
	return v.(*Index)
}

// Len returns the number of cached indexes.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// NopCache never stores anything.
type NopCache struct{}

// Lookup implements Cache.
func (NopCache) Lookup(_ uint64, build func() *Index) *Index {
	return build()
}

// Indexer answers merge queries for worksheets, memoized through its Cache.
type Indexer struct {
	Cache Cache
}

// NewIndexer returns an Indexer using c. A nil c disables caching.
func NewIndexer(c Cache) *Indexer {
	if c == nil {
		c = NopCache{}
	}
	return &Indexer{Cache: c}
}

// Index returns the merge index of g.
func (ix *Indexer) Index(g Geometry) *Index {
	cache := ix.Cache
	if cache == nil {
		cache = NopCache{}
	}
	return cache.Lookup(g.Key(), func() *Index { return Build(g) })
}

// IgnoredCells returns every non-owner coordinate inside a merge.
func (ix *Indexer) IgnoredCells(g Geometry) map[address.Coordinate]struct{} {
	return ix.Index(g).IgnoredCells
}

// IgnoredRows returns the rows whose full width is covered by merges.
func (ix *Indexer) IgnoredRows(g Geometry) map[int]struct{} {
	return ix.Index(g).IgnoredRows
}

// IgnoredColumns returns the columns whose full height is covered by merges.
func (ix *Indexer) IgnoredColumns(g Geometry) map[int]struct{} {
	return ix.Index(g).IgnoredCols
}

// MergedCells returns the merge records keyed by owner coordinate.
func (ix *Indexer) MergedCells(g Geometry) map[address.Coordinate]Record {
	return ix.Index(g).Merged
}
