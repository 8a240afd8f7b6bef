// Package vectorindex is a flat inner-product index over L2-normalized vectors.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"semsearch/internal/domain"
)

// Hit is one search result: a row id and its similarity score.
type Hit struct {
	RowID int
	Score float64
}

// Index stores unit-length vectors in insertion order. Row ids are positions.
// Searches may run concurrently; Add excludes readers and other writers.
type Index struct {
	mu        sync.RWMutex
	dimension int
	data      []float32 // row-major, NTotal()*dimension
}

func New() *Index { return &Index{} }

// Dimension returns the vector length, or 0 before the first Add.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// NTotal returns the number of stored rows.
func (x *Index) NTotal() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ntotal()
}

func (x *Index) ntotal() int {
	if x.dimension == 0 {
		return 0
	}
	return len(x.data) / x.dimension
}

// Add normalizes and appends vectors, assigning ids from NTotal onward.
// The first vector of an empty index fixes the dimension. If any vector has
// a different length or a NaN/Inf component the whole batch is rejected and
// the index is unchanged.
func (x *Index) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("empty vector: %w", domain.ErrDimensionMismatch)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has length %d, index dimension is %d: %w", i, len(v), dim, domain.ErrDimensionMismatch)
		}
		if err := checkFinite(v); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
	}

	x.dimension = dim
	x.data = growFloat32(x.data, len(vectors)*dim)
	for _, v := range vectors {
		start := len(x.data)
		x.data = append(x.data, v...)
		Normalize(x.data[start:])
	}
	return nil
}

// Search returns up to k rows with the highest inner product against the
// normalized query, by descending score then ascending row id.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := x.ntotal()
	if n == 0 || k <= 0 {
		return []Hit{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has length %d, index dimension is %d: %w", len(query), x.dimension, domain.ErrDimensionMismatch)
	}
	if err := checkFinite(query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	q := make([]float32, len(query))
	copy(q, query)
	Normalize(q)

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		row := x.data[i*x.dimension : (i+1)*x.dimension]
		hits[i] = Hit{RowID: i, Score: clamp(dot(q, row))}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RowID < hits[j].RowID
	})
	if k > n {
		k = n
	}
	return hits[:k:k], nil
}

// Vector returns a copy of the stored (normalized) row.
func (x *Index) Vector(rowID int) ([]float32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if rowID < 0 || rowID >= x.ntotal() {
		return nil, false
	}
	out := make([]float32, x.dimension)
	copy(out, x.data[rowID*x.dimension:])
	return out, true
}

// Raw calls fn with the dimension and the row-major vector data under the read lock.
// fn must not retain or modify data.
func (x *Index) Raw(fn func(dimension int, data []float32) error) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return fn(x.dimension, x.data)
}

// FromRaw rebuilds an index from stored rows without renormalizing, so a
// saved index loads back bit for bit.
func FromRaw(dimension int, data []float32) (*Index, error) {
	if dimension < 0 || (dimension == 0 && len(data) > 0) || (dimension > 0 && len(data)%dimension != 0) {
		return nil, fmt.Errorf("%d floats do not form rows of %d: %w", len(data), dimension, domain.ErrCorruptIndex)
	}
	return &Index{dimension: dimension, data: data}, nil
}

// Normalize scales v to unit L2 length in place. The zero vector is left as is.
func Normalize(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// checkFinite rejects NaN and Inf components, which would make scores NaN
// and break the result ordering.
func checkFinite(v []float32) error {
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("component %d is %v: %w", i, f, domain.ErrEmbedding)
		}
	}
	return nil
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clamp(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

func growFloat32(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]float32, len(s), len(s)+n)
	copy(out, s)
	return out
}
