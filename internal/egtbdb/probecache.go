package egtbdb

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProbeCache memoizes one-ply search results keyed by a position hash.
// A nil ProbeCache is valid and disables caching entirely, matching
// the original tool's cache-free default.
type ProbeCache interface {
	Get(hash uint64) (score int, ok bool)
	Put(hash uint64, score int)
}

// memoryProbeCache is an in-process LRU-bounded ProbeCache.
type memoryProbeCache struct {
	cache *lru.Cache[uint64, int]
}

// NewMemoryProbeCache returns a ProbeCache bounded to size entries,
// evicting least-recently-used positions once full.
func NewMemoryProbeCache(size int) ProbeCache {
	c, err := lru.New[uint64, int](size)
	if err != nil {
		// Only invalid (<=0) sizes reach here; fall back to a small
		// default rather than propagating a constructor error into
		// every caller of NewMemoryProbeCache.
		c, _ = lru.New[uint64, int](1024)
	}
	return &memoryProbeCache{cache: c}
}

func (m *memoryProbeCache) Get(hash uint64) (int, bool) { return m.cache.Get(hash) }
func (m *memoryProbeCache) Put(hash uint64, score int)  { m.cache.Add(hash, score) }

// badgerProbeCache persists one-ply search results across process
// restarts, since they are a pure function of the position.
type badgerProbeCache struct {
	db *badger.DB
}

// NewBadgerProbeCache opens (creating if needed) a badger database at
// dir to back a persistent ProbeCache.
func NewBadgerProbeCache(dir string) (ProbeCache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &badgerProbeCache{db: db}, nil
}

// Close releases the underlying badger database.
func (b *badgerProbeCache) Close() error { return b.db.Close() }

func probeCacheKey(hash uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, hash)
	return buf
}

func (b *badgerProbeCache) Get(hash uint64) (int, bool) {
	var score int
	found := false
	_ = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(probeCacheKey(hash))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				score = int(int64(binary.BigEndian.Uint64(val)))
				found = true
			}
			return nil
		})
	})
	return score, found
}

func (b *badgerProbeCache) Put(hash uint64, score int) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(score)))
	_ = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(probeCacheKey(hash), buf)
	})
}
