// Package embedding adapts embedding providers to the pipeline: batching,
// bounded concurrency and order-preserving reassembly.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"semsearch/internal/domain"
)

// Batched splits inputs into fixed-size batches, embeds up to concurrency
// batches at a time and returns vectors in input order.
type Batched struct {
	inner       domain.Embedder
	batchSize   int
	concurrency int
	onBatch     func(done, total int)
}

// Option customises a Batched embedder.
type Option func(*Batched)

// WithProgress registers a callback invoked after each finished batch.
func WithProgress(fn func(done, total int)) Option {
	return func(b *Batched) { b.onBatch = fn }
}

func NewBatched(inner domain.Embedder, batchSize, concurrency int, opts ...Option) *Batched {
	if batchSize <= 0 {
		batchSize = 32
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	b := &Batched{inner: inner, batchSize: batchSize, concurrency: concurrency}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Batched) Name() string { return b.inner.Name() }

// Embed returns one vector per text. Any provider error, or a provider
// returning the wrong number of vectors, is reported as domain.ErrEmbedding.
func (b *Batched) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	total := (len(texts) + b.batchSize - 1) / b.batchSize
	batches := make([][][]float32, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	progress := make(chan struct{}, total)
	for i := 0; i < total; i++ {
		start := i * b.batchSize
		end := min(start+b.batchSize, len(texts))
		g.Go(func() error {
			vecs, err := Embed(gctx, b.inner, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d/%d: %w", i+1, total, err)
			}
			batches[i] = vecs
			progress <- struct{}{}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for range progress {
			n++
			if b.onBatch != nil {
				b.onBatch(n, total)
			}
		}
	}()
	err := g.Wait()
	close(progress)
	<-done
	if err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for _, vecs := range batches {
		out = append(out, vecs...)
	}
	return out, nil
}

// Embed calls e once and checks the response shape. Errors are wrapped with
// domain.ErrEmbedding unless they already carry it or come from ctx.
func Embed(ctx context.Context, e domain.Embedder, texts []string) ([][]float32, error) {
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbedding) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w: %v", e.Name(), domain.ErrEmbedding, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%s returned %d vectors for %d inputs: %w", e.Name(), len(vecs), len(texts), domain.ErrEmbedding)
	}
	return vecs, nil
}
