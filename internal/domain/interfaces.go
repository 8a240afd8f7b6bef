package domain

import "context"

// Chunk is a contiguous, sentence-bounded span of one source text.
type Chunk struct {
	Text      string
	WordCount int
}

// MetadataRecord is the provenance stored for one index row.
type MetadataRecord struct {
	URL         string `json:"url"`
	ChunkID     int    `json:"chunk_id"`
	TotalChunks int    `json:"total_chunks"`
	TextLength  int    `json:"text_length"`
	Text        string `json:"text"`
}

// RankedResult is a single attributed query hit. Rank is 1-based.
type RankedResult struct {
	Rank     int
	Score    float64
	Metadata MetadataRecord
}

// SentenceSplitter turns text into an ordered sequence of sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// Embedder converts texts into fixed-dimension vectors, one per input, in input order.
// Implementations must be deterministic for a given model.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
