package document

import (
	"strings"
	"unicode/utf8"
)

// MinTextLength is the trimmed length, in characters, a string leaf needs to
// count as content rather than a label or identifier.
const MinTextLength = 40

// Collect walks v depth first, objects in key order and arrays in element
// order, and returns every trimmed string leaf of at least MinTextLength characters.
func Collect(v Value) []string {
	var out []string
	collect(v, &out)
	return out
}

func collect(v Value, out *[]string) {
	switch v.kind {
	case String:
		s := strings.TrimSpace(v.s)
		if utf8.RuneCountInString(s) >= MinTextLength {
			*out = append(*out, s)
		}
	case Array:
		for _, item := range v.items {
			collect(item, out)
		}
	case Object:
		v.Each(func(_ string, child Value) bool {
			collect(child, out)
			return true
		})
	}
}

// SourceURL returns the top-level "url" or "source_url" string of an object document.
func SourceURL(v Value) (string, bool) {
	for _, key := range []string{"url", "source_url"} {
		if f, ok := v.Get(key); ok {
			if s, ok := f.Str(); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
