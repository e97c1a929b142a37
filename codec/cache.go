package codec

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the default capacity, in chunks, of a Codec's cache.
//
// The memo is bounded with LRU eviction so adversarial inputs with unbounded
// chunk vocabularies cannot grow memory without limit. Natural text re-uses a
// small chunk vocabulary, so the hit rate stays high.
const DefaultCacheSize = 8192

// chunkCache memoizes chunk bytes -> rank sequence. It is safe for concurrent
// use; entries are immutable once inserted. Two goroutines racing on the same
// chunk may both compute it, which is harmless: the merge result is a pure
// function of the chunk.
type chunkCache struct {
	lru *lru.Cache
}

func newChunkCache(size int) *chunkCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes, excluded above.
	c, _ := lru.New(size)
	return &chunkCache{lru: c}
}

func (c *chunkCache) get(chunk string) ([]Token, bool) {
	v, ok := c.lru.Get(chunk)
	if !ok {
		return nil, false
	}
	return v.([]Token), true
}

// add stores the rank sequence for chunk. The slice must not be mutated after
// insertion.
func (c *chunkCache) add(chunk string, tokens []Token) {
	c.lru.Add(chunk, tokens)
}
