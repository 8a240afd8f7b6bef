package cli

import (
	"fmt"
	"time"

	"semsearch/internal/config"
	"semsearch/internal/domain"
	"semsearch/internal/embedding/hashing"
	"semsearch/internal/embedding/ollama"
	"semsearch/internal/embedding/openai"
)

// NewEmbedder builds the provider selected by cfg.Type.
func NewEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Hashing.Dimension), nil
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.OpenAI.Dimensions,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w: %v", domain.ErrEmbedding, err)
		}
		return client, nil
	case "ollama":
		return ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	}
	return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
}
