// Package service wires the pipeline stages together: building a persisted
// index from input documents and opening it again for queries.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"semsearch/internal/chunker"
	"semsearch/internal/document"
	"semsearch/internal/domain"
	"semsearch/internal/embedding"
	"semsearch/internal/loader"
	"semsearch/internal/metadata"
	"semsearch/internal/persistence"
	"semsearch/internal/query"
	"semsearch/internal/summarizer"
	"semsearch/internal/vectorindex"
)

// Options configures a Service. Zero values fall back to package defaults.
type Options struct {
	Embedder         domain.Embedder
	Chunker          *chunker.SentenceChunker
	Summarizer       *summarizer.Frequency
	SummarySentences int
	BatchSize        int
	Concurrency      int
	IndexDir         string
	Logger           *slog.Logger
}

// Service builds and opens indexes stored under one directory.
type Service struct {
	embedder         domain.Embedder
	batched          *embedding.Batched
	chunker          *chunker.SentenceChunker
	summarizer       *summarizer.Frequency
	summarySentences int
	loader           *loader.Loader
	paths            persistence.Paths
	logger           *slog.Logger
}

// BuildReport summarizes a finished build.
type BuildReport struct {
	Documents int
	Texts     int
	Chunks    int
	Manifest  persistence.Manifest
	Elapsed   time.Duration
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ch := opts.Chunker
	if ch == nil {
		ch = chunker.NewSentenceChunker(nil, 0, chunker.DefaultOverlapSentences)
	}
	sum := opts.Summarizer
	if sum == nil {
		sum = summarizer.NewFrequency(chunker.NewRegexpSplitter())
	}
	dir := opts.IndexDir
	if dir == "" {
		dir = "data"
	}
	s := &Service{
		embedder:         opts.Embedder,
		chunker:          ch,
		summarizer:       sum,
		summarySentences: opts.SummarySentences,
		loader:           loader.New(logger),
		paths:            persistence.InDir(dir),
		logger:           logger,
	}
	s.batched = embedding.NewBatched(opts.Embedder, opts.BatchSize, opts.Concurrency,
		embedding.WithProgress(func(done, total int) {
			logger.Info("embedded batch", slog.Int("done", done), slog.Int("total", total))
		}))
	return s
}

// Paths returns where the index and metadata live.
func (s *Service) Paths() persistence.Paths { return s.paths }

// Build loads the documents matching patterns, chunks and embeds their text
// and persists the index with its metadata. Nothing is written unless every
// stage succeeds.
func (s *Service) Build(ctx context.Context, patterns []string) (BuildReport, error) {
	start := time.Now()
	docs, err := s.loader.Load(ctx, patterns)
	if err != nil {
		return BuildReport{}, err
	}
	s.logger.Info("loaded documents", slog.Int("count", len(docs)))

	var (
		records []domain.MetadataRecord
		leads   []string
		sources []string
		texts   int
	)
	for _, doc := range docs {
		sources = append(sources, doc.Path)
		url, ok := document.SourceURL(doc.Value)
		if !ok {
			url = doc.Path
		}
		collected := document.Collect(doc.Value)
		if len(collected) > 0 {
			leads = append(leads, collected[0])
		}
		texts += len(collected)
		for _, text := range collected {
			chunks := s.chunker.Chunk(text)
			for i, c := range chunks {
				records = append(records, domain.MetadataRecord{
					URL:         url,
					ChunkID:     i,
					TotalChunks: len(chunks),
					TextLength:  utf8.RuneCountInString(c.Text),
					Text:        c.Text,
				})
			}
		}
		s.logger.Debug("extracted document", slog.String("path", doc.Path), slog.Int("texts", len(collected)))
	}
	if len(records) == 0 {
		return BuildReport{}, fmt.Errorf("%d documents yielded no text of at least %d characters: %w",
			len(docs), document.MinTextLength, domain.ErrEmptyExtraction)
	}
	s.logger.Info("chunked text", slog.Int("texts", texts), slog.Int("chunks", len(records)))

	inputs := make([]string, len(records))
	for i, r := range records {
		inputs[i] = r.Text
	}
	vectors, err := embedding.Embed(ctx, s.batched, inputs)
	if err != nil {
		return BuildReport{}, fmt.Errorf("embed chunks: %w", err)
	}

	idx := vectorindex.New()
	store := metadata.New()
	for i, v := range vectors {
		if err := idx.Add([][]float32{v}); err != nil {
			return BuildReport{}, fmt.Errorf("chunk %d: %w", i, err)
		}
		store.Append(records[i])
	}

	manifest, err := persistence.Save(s.paths, idx, store, persistence.Manifest{
		Embedder: s.embedder.Name(),
		Sources:  sources,
		Summary:  s.summarizer.Summarize(leads, s.summarySentences),
	})
	if err != nil {
		return BuildReport{}, err
	}
	report := BuildReport{
		Documents: len(docs),
		Texts:     texts,
		Chunks:    len(records),
		Manifest:  manifest,
		Elapsed:   time.Since(start),
	}
	s.logger.Info("index saved",
		slog.String("dir", s.paths.Index),
		slog.String("build_id", manifest.BuildID.String()),
		slog.Int("rows", manifest.Rows),
		slog.Int("dimension", manifest.Dimension),
		slog.Duration("elapsed", report.Elapsed))
	return report, nil
}

// Open loads the persisted pair and returns a query engine over it.
func (s *Service) Open() (*query.Engine, persistence.Manifest, error) {
	idx, store, m, err := persistence.Load(s.paths)
	if err != nil {
		return nil, persistence.Manifest{}, err
	}
	if name := s.embedder.Name(); m.Embedder != name {
		s.logger.Warn("index was built with a different embedder",
			slog.String("index", m.Embedder), slog.String("configured", name))
	}
	engine, err := query.New(s.embedder, idx, store)
	if err != nil {
		return nil, persistence.Manifest{}, err
	}
	s.logger.Info("index loaded", slog.String("build_id", m.BuildID.String()), slog.Int("rows", m.Rows))
	return engine, m, nil
}

// Manifest reads the persisted pair and reports its manifest.
func (s *Service) Manifest() (persistence.Manifest, error) {
	_, _, m, err := persistence.Load(s.paths)
	return m, err
}
