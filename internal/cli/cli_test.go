package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/config"
	"semsearch/internal/domain"
)

type harness struct {
	dir    string
	config string
	stdout bytes.Buffer
	stderr bytes.Buffer
	stdin  string
	embed  func(config.EmbedderConfig) (domain.Embedder, error)
}

func newHarness(t *testing.T, yaml string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml = "index:\n  dir: " + filepath.Join(dir, "data") + "\nlog:\n  level: error\n" + yaml
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))
	return &harness{dir: dir, config: cfg}
}

func (h *harness) input(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	app := &App{
		Stdin:           strings.NewReader(h.stdin),
		Stdout:          &h.stdout,
		Stderr:          &h.stderr,
		EmbedderFactory: h.embed,
	}
	return Execute(context.Background(), app, append([]string{"--config", h.config}, args...))
}

const solarDoc = `{"url":"https://example.org/solar","title":"Solar power",
"lead_text":"Solar power is the conversion of energy from sunlight into electricity. It uses photovoltaics or concentrated solar power.[1]",
"sections":[{"title":"History","level":2,"content":"Early solar cells were built from selenium in the nineteenth century.","subsections":[]}]}`

const windDoc = `{"source_url":"https://example.org/wind","body":"Wind power uses air flow through wind turbines to mechanically power generators."}`

func TestBuildThenQuery(t *testing.T) {
	h := newHarness(t, "")
	h.input(t, "scraped_data_solar.json", solarDoc)
	h.input(t, "scraped_data_wind.json", windDoc)

	code := h.run("build", filepath.Join(h.dir, "scraped_data_*.json"))
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Indexed 3 chunks from 3 texts in 2 documents.")

	code = h.run("query", "-k", "2", "wind", "turbines")
	require.Equal(t, ExitOK, code, h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "Query: 'wind turbines'")
	assert.Contains(t, out, "Rank 1 (Score: ")
	assert.Contains(t, out, "Source: https://example.org/wind")
	assert.NotContains(t, out, "Rank 3")

	code = h.run("info")
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Chunks:     3")
	assert.Contains(t, h.stdout.String(), "Embedder:   hashing")
}

func TestQuery_DefaultTopKClampsToIndexSize(t *testing.T) {
	h := newHarness(t, "query:\n  top_k: 10\n")
	h.input(t, "doc.json", windDoc)
	require.Equal(t, ExitOK, h.run("build", filepath.Join(h.dir, "doc.json")), h.stderr.String())

	require.Equal(t, ExitOK, h.run("query", "energy"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Rank 1 ")
	assert.NotContains(t, h.stdout.String(), "Rank 2 ")
}

func TestInteractive_PlainSession(t *testing.T) {
	h := newHarness(t, "")
	h.input(t, "doc.json", solarDoc)
	require.Equal(t, ExitOK, h.run("build", filepath.Join(h.dir, "doc.json")), h.stderr.String())

	h.stdin = "selenium cells\nq\nignored\n"
	require.Equal(t, ExitOK, h.run("interactive", "--plain"), h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "Query: 'selenium cells'")
	assert.Contains(t, out, "Goodbye!")
	assert.NotContains(t, out, "Query: 'ignored'")
}

func TestExitCodes(t *testing.T) {
	t.Run("no input documents", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, ExitNoInput, h.run("build", filepath.Join(h.dir, "missing_*.json")))
	})

	t.Run("empty extraction", func(t *testing.T) {
		h := newHarness(t, "")
		p := h.input(t, "short.json", `{"url":"https://x","body":"too short"}`)
		assert.Equal(t, ExitEmptyExtraction, h.run("build", p))
	})

	t.Run("embedding failure", func(t *testing.T) {
		h := newHarness(t, "")
		h.embed = func(config.EmbedderConfig) (domain.Embedder, error) { return brokenEmbedder{}, nil }
		p := h.input(t, "doc.json", windDoc)
		assert.Equal(t, ExitEmbedding, h.run("build", p))
		assert.NoFileExists(t, filepath.Join(h.dir, "data", "index.bin"))
	})

	t.Run("index missing", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, ExitIndexUnavailable, h.run("query", "anything"))
		assert.Equal(t, ExitIndexUnavailable, h.run("info"))
		h.stdin = "q\n"
		assert.Equal(t, ExitIndexUnavailable, h.run("interactive", "--plain"))
	})

	t.Run("corrupt index", func(t *testing.T) {
		h := newHarness(t, "")
		p := h.input(t, "doc.json", windDoc)
		require.Equal(t, ExitOK, h.run("build", p))
		idx := filepath.Join(h.dir, "data", "index.bin")
		raw, err := os.ReadFile(idx)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		require.NoError(t, os.WriteFile(idx, raw, 0o644))
		assert.Equal(t, ExitIndexUnavailable, h.run("query", "wind"))
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		h := newHarness(t, "embedder:\n  hashing:\n    dimension: 64\n")
		p := h.input(t, "doc.json", windDoc)
		require.Equal(t, ExitOK, h.run("build", p))

		h.embed = func(config.EmbedderConfig) (domain.Embedder, error) { return fixedLength(32), nil }
		assert.Equal(t, ExitDimensionMismatch, h.run("query", "wind"))
	})

	t.Run("bad flag", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, ExitFailure, h.run("query", "-k", "-3", "wind"))
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("other"), ExitFailure},
		{fmt.Errorf("x: %w", domain.ErrInputNotFound), ExitNoInput},
		{fmt.Errorf("x: %w", domain.ErrEmptyExtraction), ExitEmptyExtraction},
		{fmt.Errorf("x: %w", domain.ErrEmbedding), ExitEmbedding},
		{fmt.Errorf("x: %w", domain.ErrDimensionMismatch), ExitDimensionMismatch},
		{fmt.Errorf("x: %w", domain.ErrCorruptIndex), ExitCorruptIndex},
		{fmt.Errorf("x: %w", domain.ErrIO), ExitIO},
		{&loadError{err: domain.ErrCorruptIndex}, ExitIndexUnavailable},
		{fmt.Errorf("wrapped: %w", &loadError{err: domain.ErrInputNotFound}), ExitIndexUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(config.EmbedderConfig{Type: "hashing", Hashing: config.HashingEmbedderConfig{Dimension: 8}})
	require.NoError(t, err)
	assert.Equal(t, "hashing", e.Name())

	e, err = NewEmbedder(config.EmbedderConfig{Type: "ollama", Ollama: config.OllamaEmbedderConfig{Model: "all-minilm"}})
	require.NoError(t, err)
	assert.Equal(t, "ollama/all-minilm", e.Name())

	t.Setenv("SEMSEARCH_TEST_EMPTY_KEY", "")
	_, err = NewEmbedder(config.EmbedderConfig{Type: "openai", OpenAI: config.OpenAIEmbedderConfig{APIKeyEnv: "SEMSEARCH_TEST_EMPTY_KEY"}})
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	_, err = NewEmbedder(config.EmbedderConfig{Type: "bert"})
	assert.Error(t, err)
}

type brokenEmbedder struct{}

func (brokenEmbedder) Name() string { return "broken" }
func (brokenEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

type fixedLength int

func (f fixedLength) Name() string { return "hashing" }
func (f fixedLength) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, int(f))
		out[i][0] = 1
	}
	return out, nil
}
