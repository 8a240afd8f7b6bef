package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/document"
	"semsearch/internal/domain"
)

func quietLoader() *Loader {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_GlobSortedAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "scraped_data_b.json", `{"url":"https://b","body":"bbb"}`)
	a := writeFile(t, dir, "scraped_data_a.json", `{"url":"https://a","body":"aaa"}`)
	writeFile(t, dir, "scraped_data_c.json", `{"url": broken`)

	docs, err := quietLoader().Load(context.Background(), []string{filepath.Join(dir, "scraped_data_*.json")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a, docs[0].Path)
	assert.Equal(t, b, docs[1].Path)
	url, ok := document.SourceURL(docs[0].Value)
	require.True(t, ok)
	assert.Equal(t, "https://a", url)
}

func TestLoad_NothingMatches(t *testing.T) {
	dir := t.TempDir()
	_, err := quietLoader().Load(context.Background(), []string{filepath.Join(dir, "*.json")})
	assert.ErrorIs(t, err, domain.ErrInputNotFound)
}

func TestLoad_OnlyMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.json", `[1, 2`)
	writeFile(t, dir, "y.pdf", `not a pdf`)

	_, err := quietLoader().Load(context.Background(), []string{filepath.Join(dir, "*")})
	assert.ErrorIs(t, err, domain.ErrInputNotFound)
}

func TestLoad_DirectoryWalkIgnoresUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes/a.txt", "plain text body")
	writeFile(t, dir, "notes/deeper/b.json", `{"k":"v"}`)
	writeFile(t, dir, "notes/image.png", "\x89PNG")

	docs, err := quietLoader().Load(context.Background(), []string{filepath.Join(dir, "notes")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join(dir, "notes", "a.txt"), docs[0].Path)
	assert.Equal(t, filepath.Join(dir, "notes", "deeper", "b.json"), docs[1].Path)
}

func TestLoad_DuplicatePatterns(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "one.json", `{"a":"b"}`)

	docs, err := quietLoader().Load(context.Background(), []string{p, filepath.Join(dir, "*.json")})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.json", `{"a":"b"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietLoader().Load(ctx, []string{filepath.Join(dir, "*.json")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeText(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "line one\r\nline two\x00")

	v, err := decodeText(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"url", "content"}, v.Keys())
	content, _ := v.Get("content")
	s, _ := content.Str()
	assert.Equal(t, "line one\nline two", s)
}

const sampleMarkdown = `# Solar Power

Solar power is the conversion of energy from sunlight into electricity.

## History

Early experiments with *photovoltaics* began in the nineteenth century.

### Early days

Selenium cells were the first
working devices.

## Empty

## Uses

- rooftop panels
- utility farms

` + "```\ncode sample\n```\n"

func TestMarkdownValue_SectionTree(t *testing.T) {
	v := markdownValue("solar.md", []byte(sampleMarkdown))

	assert.Equal(t, []string{"url", "title", "lead_text", "sections"}, v.Keys())
	title, _ := v.Get("title")
	s, _ := title.Str()
	assert.Equal(t, "Solar Power", s)
	lead, _ := v.Get("lead_text")
	s, _ = lead.Str()
	assert.Equal(t, "Solar power is the conversion of energy from sunlight into electricity.", s)

	sections, _ := v.Get("sections")
	require.Equal(t, 2, sections.Len())

	history := sections.Items()[0]
	assertStr(t, history, "title", "History")
	assertStr(t, history, "content", "Early experiments with photovoltaics began in the nineteenth century.")
	level, _ := history.Get("level")
	assert.Equal(t, document.Number, level.Kind())
	subs, _ := history.Get("subsections")
	require.Equal(t, 1, subs.Len())
	assertStr(t, subs.Items()[0], "content", "Selenium cells were the first working devices.")

	uses := sections.Items()[1]
	assertStr(t, uses, "title", "Uses")
	assertStr(t, uses, "content", "• rooftop panels\n• utility farms\n\ncode sample")
}

func TestMarkdownValue_TitleFallsBackToFileName(t *testing.T) {
	v := markdownValue("dir/guide.md", []byte("Just a paragraph of text.\n"))
	assertStr(t, v, "title", "guide")
	assertStr(t, v, "lead_text", "Just a paragraph of text.")
	sections, _ := v.Get("sections")
	assert.Equal(t, 0, sections.Len())
}

func TestMarkdownValue_FeedsCollector(t *testing.T) {
	v := markdownValue("solar.md", []byte(sampleMarkdown))
	texts := document.Collect(v)
	assert.Contains(t, texts, "Solar power is the conversion of energy from sunlight into electricity.")
	assert.Contains(t, texts, "Early experiments with photovoltaics began in the nineteenth century.")
}

func assertStr(t *testing.T, v document.Value, key, want string) {
	t.Helper()
	f, ok := v.Get(key)
	require.True(t, ok, "missing %q", key)
	s, ok := f.Str()
	require.True(t, ok, "%q is not a string", key)
	assert.Equal(t, want, s)
}
