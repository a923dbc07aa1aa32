package swreader

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// tileKey identifies a fetched tile payload within a Reader's cache.
// Adapted from the teacher's cog.TileCache key shape
// (internal/cog/tilecache.go), dropping the source-path field since one
// Reader caches tiles from a single archive.
type tileKey struct {
	level uint8
	row   uint32
	col   uint32
}

// tileCache is an LRU of fetched (undecoded) tile payloads, backed by
// hashicorp/golang-lru/v2 instead of the teacher's hand-rolled
// mutex+slice cache: the library's Cache type already serializes Get/Add
// internally, so no extra reader-writer lock is layered on top of it.
type tileCache struct {
	lru *lru.Cache[tileKey, []byte]
}

// newTileCache creates a tile cache holding at most maxEntries payloads.
// A non-positive size disables caching.
func newTileCache(maxEntries int) *tileCache {
	if maxEntries <= 0 {
		return &tileCache{}
	}
	c, err := lru.New[tileKey, []byte](maxEntries)
	if err != nil {
		// Only returned for a non-positive size, which is guarded above.
		return &tileCache{}
	}
	return &tileCache{lru: c}
}

func (tc *tileCache) get(level uint8, row, col uint32) ([]byte, bool) {
	if tc.lru == nil {
		return nil, false
	}
	return tc.lru.Get(tileKey{level: level, row: row, col: col})
}

func (tc *tileCache) put(level uint8, row, col uint32, payload []byte) {
	if tc.lru == nil {
		return
	}
	tc.lru.Add(tileKey{level: level, row: row, col: col}, payload)
}
