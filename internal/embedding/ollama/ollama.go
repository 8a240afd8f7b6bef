package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
)

const (
	DefaultModel   = "nomic-embed-text"
	DefaultBaseURL = "http://localhost:11434/api"
)

// Client embeds texts with a local Ollama server, one request per text.
type Client struct {
	model string
	embed chromem.EmbeddingFunc
}

// NewClient creates an Ollama embedder. baseURL is the API root, e.g.
// http://localhost:11434/api; a missing /api suffix is added.
func NewClient(baseURL, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/api") {
		baseURL += "/api"
	}
	return &Client{model: model, embed: chromem.NewEmbeddingFuncOllama(model, baseURL)}
}

func (c *Client) Name() string { return "ollama/" + c.model }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := c.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("ollama embed %d/%d: %w", i+1, len(texts), err)
		}
		out[i] = v
	}
	return out, nil
}
