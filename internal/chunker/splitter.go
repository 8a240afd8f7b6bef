package chunker

import (
	"regexp"
	"strings"
)

// RegexpSplitter splits on sentence-ending punctuation followed by whitespace.
// Closing quotes and brackets stay with the sentence they end.
type RegexpSplitter struct {
	boundary *regexp.Regexp
}

func NewRegexpSplitter() *RegexpSplitter {
	return &RegexpSplitter{
		boundary: regexp.MustCompile(`[.!?]+["'”’)\]]*\s+`),
	}
}

// Split returns the trimmed, non-empty sentences of text in order.
// Text after the last terminator forms the final sentence.
func (s *RegexpSplitter) Split(text string) []string {
	var out []string
	start := 0
	for _, loc := range s.boundary.FindAllStringIndex(text, -1) {
		if sent := strings.TrimSpace(text[start:loc[1]]); sent != "" {
			out = append(out, sent)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
