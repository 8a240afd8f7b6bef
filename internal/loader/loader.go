// Package loader turns files on disk into structured documents for the
// collector. JSON is taken as is; Markdown, PDF and plain text are lifted
// into small JSON-shaped trees first.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"semsearch/internal/document"
	"semsearch/internal/domain"
)

// DefaultPattern matches the files produced by the scraper.
const DefaultPattern = "scraped_data_*.json"

var errUnsupported = errors.New("unsupported file type")

// Document is one parsed input file.
type Document struct {
	Path  string
	Value document.Value
}

type decodeFunc func(path string) (document.Value, error)

// Loader resolves patterns and decodes the matching files.
type Loader struct {
	logger   *slog.Logger
	decoders map[string]decodeFunc
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger,
		decoders: map[string]decodeFunc{
			".json":     decodeJSON,
			".md":       decodeMarkdown,
			".markdown": decodeMarkdown,
			".pdf":      decodePDF,
			".txt":      decodeText,
		},
	}
}

// Supported reports whether path has an extension the loader can decode.
func (l *Loader) Supported(path string) bool {
	_, ok := l.decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load expands patterns (globs, plain files or directories) and decodes
// every supported file, in path order. Files that cannot be read or parsed
// are logged and skipped. If nothing usable remains the error wraps
// domain.ErrInputNotFound.
func (l *Loader) Load(ctx context.Context, patterns []string) ([]Document, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	paths, err := l.expand(patterns)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := l.decode(p)
		if err != nil {
			l.logger.Warn("skipping input file", slog.String("path", p), slog.Any("error", err))
			continue
		}
		l.logger.Debug("loaded input file", slog.String("path", p), slog.String("kind", v.Kind().String()))
		docs = append(docs, Document{Path: p, Value: v})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no readable documents match %s: %w", strings.Join(patterns, ", "), domain.ErrInputNotFound)
	}
	return docs, nil
}

func (l *Loader) decode(path string) (document.Value, error) {
	dec, ok := l.decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return document.Value{}, errUnsupported
	}
	return dec(path)
}

func (l *Loader) expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if !l.Supported(p) {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				l.logger.Warn("skipping input path", slog.String("path", m), slog.Any("error", err))
				continue
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w: %v", m, domain.ErrIO, err)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func decodeJSON(path string) (document.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Value{}, err
	}
	return document.Parse(data)
}

func decodeText(path string) (document.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Value{}, err
	}
	obj := document.ObjectValue()
	obj.Set("url", document.StringValue(path))
	obj.Set("content", document.StringValue(normalizeText(string(data))))
	return obj, nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
