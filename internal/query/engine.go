// Package query answers natural-language queries against a loaded index.
package query

import (
	"context"
	"fmt"

	"semsearch/internal/domain"
	"semsearch/internal/embedding"
	"semsearch/internal/metadata"
	"semsearch/internal/vectorindex"
)

// Engine ranks indexed chunks against a query. It never mutates the index or
// the store, so one Engine may serve concurrent queries.
type Engine struct {
	embedder domain.Embedder
	index    *vectorindex.Index
	store    *metadata.Store
}

// New binds an embedder to an index and its metadata. The pair must be
// aligned; a divergent pair is reported as domain.ErrCorruptIndex.
func New(embedder domain.Embedder, index *vectorindex.Index, store *metadata.Store) (*Engine, error) {
	if err := metadata.CheckAligned(index.NTotal(), store.Len()); err != nil {
		return nil, err
	}
	return &Engine{embedder: embedder, index: index, store: store}, nil
}

// Size returns the number of indexed chunks.
func (e *Engine) Size() int { return e.index.NTotal() }

// Query embeds text and returns at most topK results, best first.
func (e *Engine) Query(ctx context.Context, text string, topK int) ([]domain.RankedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vecs, err := embedding.Embed(ctx, e.embedder, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if e.index.NTotal() == 0 || topK <= 0 {
		return []domain.RankedResult{}, nil
	}
	q := vecs[0]
	if dim := e.index.Dimension(); len(q) != dim {
		return nil, fmt.Errorf("query embedding has length %d, index dimension is %d: %w", len(q), dim, domain.ErrDimensionMismatch)
	}

	hits, err := e.index.Search(q, topK)
	if err != nil {
		return nil, err
	}
	results := make([]domain.RankedResult, 0, len(hits))
	for i, h := range hits {
		rec, err := e.store.Get(h.RowID)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.RankedResult{Rank: i + 1, Score: h.Score, Metadata: rec})
	}
	return results, nil
}
