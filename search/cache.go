package search

import (
	"encoding/binary"
	"strconv"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
	"github.com/ogenlabs/hipus/core"
	"golang.org/x/sync/singleflight"
)

const cacheBufferItems = 64

// QueryCache memoizes ranked result pages. Keys embed the index and
// vector generations, so a mutation or a vector swap orphans every
// earlier entry and eviction reclaims them; there is no TTL bookkeeping.
type QueryCache struct {
	store *ristretto.Cache[uint64, []core.SearchHit]
	group singleflight.Group
}

// NewQueryCache creates a cache holding up to maxEntries result pages.
func NewQueryCache(maxEntries int64) (*QueryCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[uint64, []core.SearchHit]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &QueryCache{store: store}, nil
}

// GetOrCompute returns the cached page for key, computing and storing
// it on a miss. Concurrent misses on the same key share one computation.
func (c *QueryCache) GetOrCompute(key uint64, compute func() ([]core.SearchHit, error)) ([]core.SearchHit, error) {
	if hits, ok := c.store.Get(key); ok {
		return hits, nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		if hits, ok := c.store.Get(key); ok {
			return hits, nil
		}
		hits, err := compute()
		if err != nil {
			return nil, err
		}
		c.store.Set(key, hits, 1)
		// Wait flushes the set buffer so the entry is visible to the
		// next lookup.
		c.store.Wait()
		return hits, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.SearchHit), nil
}

// Close releases the cache resources.
func (c *QueryCache) Close() {
	c.store.Close()
}

// queryKey fingerprints one query execution: normalized terms, mode,
// page, index generation and vector generation. The vector generation
// matters because a rebuild changes semantic results without touching
// the index.
func queryKey(terms []string, mode Mode, limit, offset int, generation, vectorGeneration uint64) uint64 {
	h, _ := blake2b.New(8, nil)
	for _, term := range terms {
		h.Write([]byte(term))
		h.Write([]byte{0})
	}
	h.Write([]byte(mode))
	h.Write([]byte{0})

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(limit))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(offset))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], generation)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], vectorGeneration)
	h.Write(buf[:])

	return binary.LittleEndian.Uint64(h.Sum(nil))
}
