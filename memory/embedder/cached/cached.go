// Package cached wraps any embedder with a ristretto read-through
// cache. Conversations re-embed the same short texts constantly (the
// query of turn N is the committed text of turn N), so a small cache
// removes most model invocations and makes repeated embeds of unchanged
// text trivially stable.
package cached

import (
	"context"

	"github.com/dgraph-io/ristretto"

	"github.com/neurochat/neurochat/memory"
)

// Embedder is a caching decorator around another memory.Embedder.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache bounded by maxBytes of vector data.
func New(inner memory.Embedder, maxBytes int64) (*Embedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, computing and caching it on
// a miss. Failures are not cached.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec, int64(len(vec)*4))
	// Wait drains the set buffer so the very next turn already hits.
	e.cache.Wait()
	return vec, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close releases the cache.
func (e *Embedder) Close() {
	e.cache.Close()
}
