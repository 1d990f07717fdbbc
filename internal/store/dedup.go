// Package store provides delivered-song tracking: in-memory deduplication and
// persistent resolve history.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DedupStore is a thread-safe set of delivered-song keys. A Bloom filter
// front-loads the negative case; the LRU tracks insertion order for eviction.
// Keys are normalized "artist|title" strings (see pkg/fuzzy).
type DedupStore struct {
	keys                   map[string]struct{}
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.RWMutex
	maxKeys                int
	bloomFalsePositiveRate float64
}

// NewDedupStore creates a deduplication store with the given capacity and
// Bloom false positive rate.
func NewDedupStore(maxKeys int, bloomFalsePositiveRate float64) *DedupStore {
	if maxKeys <= 0 {
		panic("maxKeys must be positive")
	}

	lruCache, err := lru.New[string, struct{}](maxKeys)
	if err != nil {
		panic(err)
	}

	return &DedupStore{
		keys:                   make(map[string]struct{}),
		bloom:                  bloom.NewWithEstimates(uint(maxKeys), bloomFalsePositiveRate),
		lru:                    lruCache,
		maxKeys:                maxKeys,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// Has checks whether a song key was already delivered.
func (ds *DedupStore) Has(key string) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	if !ds.bloom.TestString(key) {
		return false
	}

	_, exists := ds.keys[key]
	return exists
}

// Add records a delivered song key.
func (ds *DedupStore) Add(key string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if _, exists := ds.keys[key]; exists {
		return
	}

	ds.keys[key] = struct{}{}
	ds.bloom.AddString(key)
	ds.lru.Add(key, struct{}{})

	if len(ds.keys) > ds.maxKeys {
		ds.evictOldest()
	}
}

// Remove forgets a song key. The Bloom filter does not support removal, so a
// removed key may still cost a map lookup on the next Has.
func (ds *DedupStore) Remove(key string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if _, exists := ds.keys[key]; !exists {
		return
	}

	delete(ds.keys, key)
	ds.lru.Remove(key)
}

// Load clears the store and seeds it with the given keys (e.g. from the
// history store at startup).
func (ds *DedupStore) Load(keys []string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.clear()

	for _, key := range keys {
		if key != "" {
			ds.keys[key] = struct{}{}
			ds.bloom.AddString(key)
			ds.lru.Add(key, struct{}{})
		}
	}

	for len(ds.keys) > ds.maxKeys {
		ds.evictOldest()
	}
}

// Size returns the number of keys currently stored.
func (ds *DedupStore) Size() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return len(ds.keys)
}

// Clear removes all keys from the store.
func (ds *DedupStore) Clear() {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	ds.clear()
}

func (ds *DedupStore) clear() {
	ds.keys = make(map[string]struct{})
	ds.bloom = bloom.NewWithEstimates(uint(ds.maxKeys), ds.bloomFalsePositiveRate)
	ds.lru.Purge()
}

func (ds *DedupStore) evictOldest() {
	oldestKey, _, ok := ds.lru.GetOldest()
	if !ok {
		return
	}

	delete(ds.keys, oldestKey)
	ds.lru.Remove(oldestKey)
}
