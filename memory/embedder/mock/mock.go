// Package mock provides a deterministic embedder for tests and offline
// runs. It has no semantic understanding: identical texts map to
// identical unit vectors, different texts to effectively orthogonal
// ones.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// Embedder generates hash-seeded pseudo-random unit vectors.
type Embedder struct {
	dims int
}

// New creates a mock embedder producing vectors of the given dimension.
func New(dims int) *Embedder {
	return &Embedder{dims: dims}
}

// Embed derives a unit vector from the text's hash. Repeated calls on
// the same text return the same vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dims)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	return normalize(vec), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dims
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
