// Package summarizer produces a short extractive overview of an indexed corpus.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"semsearch/internal/domain"
)

// DefaultMaxSentences bounds the summary when the caller passes no limit.
const DefaultMaxSentences = 3

// Frequency picks the sentences whose content words are most frequent
// across the whole input, normalized by sentence length, and returns them in
// their original order.
type Frequency struct {
	splitter     domain.SentenceSplitter
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewFrequency(splitter domain.SentenceSplitter) *Frequency {
	return &Frequency{
		splitter:     splitter,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Summarize returns up to maxSentences sentences drawn from texts.
func (f *Frequency) Summarize(texts []string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	var sentences []string
	for _, t := range texts {
		sentences = append(sentences, f.splitter.Split(t)...)
	}
	if len(sentences) == 0 {
		return ""
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = f.tokens(sent)
		for _, tok := range tokens[i] {
			if _, stop := f.stopwords[tok]; !stop {
				freq[tok]++
			}
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i := range sentences {
		s := 0.0
		for _, tok := range tokens[i] {
			s += freq[tok]
		}
		if maxF > 0 {
			s /= maxF
		}
		if n := len(tokens[i]); n > 0 {
			s /= math.Sqrt(float64(n))
		}
		scores[i] = scored{i, s}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := min(maxSentences, len(scores))
	picked := make([]int, n)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)
	out := make([]string, n)
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func (f *Frequency) tokens(text string) []string {
	return f.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
