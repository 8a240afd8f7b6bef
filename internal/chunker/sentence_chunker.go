package chunker

import (
	"strings"

	"semsearch/internal/domain"
)

const (
	DefaultChunkSizeWords   = 500
	DefaultOverlapSentences = 2
)

// SentenceChunker packs sentences into chunks bounded by a word budget,
// carrying the last few sentences of each chunk into the next one.
type SentenceChunker struct {
	splitter         domain.SentenceSplitter
	chunkSizeWords   int
	overlapSentences int
}

// NewSentenceChunker returns a chunker using splitter. A non-positive size
// falls back to DefaultChunkSizeWords; a negative overlap is treated as zero.
func NewSentenceChunker(splitter domain.SentenceSplitter, chunkSizeWords, overlapSentences int) *SentenceChunker {
	if chunkSizeWords <= 0 {
		chunkSizeWords = DefaultChunkSizeWords
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if splitter == nil {
		splitter = NewRegexpSplitter()
	}
	return &SentenceChunker{
		splitter:         splitter,
		chunkSizeWords:   chunkSizeWords,
		overlapSentences: overlapSentences,
	}
}

// Chunk splits text into overlapping chunks using the configured budget.
func (c *SentenceChunker) Chunk(text string) []domain.Chunk {
	return Chunk(c.splitter, text, c.chunkSizeWords, c.overlapSentences)
}

// Chunk splits text into sentences and accumulates them until adding the next
// sentence would push a non-empty chunk over chunkSizeWords. The emitted chunk
// is the sentences joined by single spaces; the next chunk starts with the last
// overlapSentences of them. A sentence longer than the budget is never split.
func Chunk(splitter domain.SentenceSplitter, text string, chunkSizeWords, overlapSentences int) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	sentences := splitter.Split(text)

	var chunks []domain.Chunk
	var current []string
	words := 0
	for _, sentence := range sentences {
		n := wordCount(sentence)
		if len(current) > 0 && words+n > chunkSizeWords {
			chunks = append(chunks, domain.Chunk{Text: strings.Join(current, " "), WordCount: words})
			current = carry(current, overlapSentences)
			words = 0
			for _, s := range current {
				words += wordCount(s)
			}
		}
		current = append(current, sentence)
		words += n
	}
	if len(current) > 0 {
		chunks = append(chunks, domain.Chunk{Text: strings.Join(current, " "), WordCount: words})
	}
	return chunks
}

// carry returns a fresh slice with the last n sentences of prev.
func carry(prev []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(prev) {
		n = len(prev)
	}
	out := make([]string, n, n+8)
	copy(out, prev[len(prev)-n:])
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
