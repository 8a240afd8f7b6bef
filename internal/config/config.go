package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. SEMSEARCH_INDEX_DIR.
const EnvPrefix = "SEMSEARCH_"

// HashingEmbedderConfig configures the offline feature-hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension" toml:"dimension" env:"DIMENSION"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env" env:"API_KEY_ENV"`
	Model       string `yaml:"model" toml:"model" env:"MODEL"`
	Dimensions  int    `yaml:"dimensions,omitempty" toml:"dimensions,omitempty" env:"DIMENSIONS"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs" env:"TIMEOUT_SECS"`
	MaxRetries  int    `yaml:"max_retries" toml:"max_retries" env:"MAX_RETRIES"`
}

// OllamaEmbedderConfig points at a local Ollama server.
type OllamaEmbedderConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	Model   string `yaml:"model" toml:"model" env:"MODEL"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                `yaml:"type" toml:"type" env:"TYPE"`
	BatchSize   int                   `yaml:"batch_size" toml:"batch_size" env:"BATCH_SIZE"`
	Concurrency int                   `yaml:"concurrency" toml:"concurrency" env:"CONCURRENCY"`
	Hashing     HashingEmbedderConfig `yaml:"hashing" toml:"hashing" envPrefix:"HASHING_"`
	OpenAI      OpenAIEmbedderConfig  `yaml:"openai" toml:"openai" envPrefix:"OPENAI_"`
	Ollama      OllamaEmbedderConfig  `yaml:"ollama" toml:"ollama" envPrefix:"OLLAMA_"`
}

// ChunkerConfig configures how extracted text is split into chunks.
type ChunkerConfig struct {
	ChunkSizeWords   int `yaml:"chunk_size_words" toml:"chunk_size_words" env:"CHUNK_SIZE_WORDS"`
	OverlapSentences int `yaml:"overlap_sentences" toml:"overlap_sentences" env:"OVERLAP_SENTENCES"`
}

// IndexConfig locates the persisted index.
type IndexConfig struct {
	Dir string `yaml:"dir" toml:"dir" env:"DIR"`
}

type QueryConfig struct {
	TopK int `yaml:"top_k" toml:"top_k" env:"TOP_K"`
}

// SummarizerConfig bounds the corpus overview stored with each build.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences" toml:"max_sentences" env:"MAX_SENTENCES"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LEVEL"`
	Format string `yaml:"format" toml:"format" env:"FORMAT"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder" toml:"embedder" envPrefix:"EMBEDDER_"`
	Chunker    ChunkerConfig    `yaml:"chunker" toml:"chunker" envPrefix:"CHUNKER_"`
	Index      IndexConfig      `yaml:"index" toml:"index" envPrefix:"INDEX_"`
	Query      QueryConfig      `yaml:"query" toml:"query" envPrefix:"QUERY_"`
	Summarizer SummarizerConfig `yaml:"summarizer" toml:"summarizer" envPrefix:"SUMMARIZER_"`
	Log        LogConfig        `yaml:"log" toml:"log" envPrefix:"LOG_"`
}

// Load reads a config from path, YAML or TOML by extension, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml, ./config.toml, then
// ~/.config/semsearch/config.yaml. If none exists, it writes defaults to the
// user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	for _, p := range []string{"config.yaml", "config.toml"} {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays SEMSEARCH_* variables onto cfg. A nil environ means the
// process environment. Empty values leave fields unchanged.
func ApplyEnv(cfg *AppConfig, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hashing", "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Chunker.OverlapSentences < 0 {
		return fmt.Errorf("chunker.overlap_sentences must not be negative, got %d", c.Chunker.OverlapSentences)
	}
	return nil
}

func unmarshal(path string, data []byte, cfg *AppConfig) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{
			Type:        "hashing",
			BatchSize:   32,
			Concurrency: 1,
			Hashing:     HashingEmbedderConfig{Dimension: 512},
			OpenAI: OpenAIEmbedderConfig{
				BaseURL:     "https://api.openai.com/v1",
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "text-embedding-3-small",
				TimeoutSecs: 30,
				MaxRetries:  5,
			},
			Ollama: OllamaEmbedderConfig{BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
		},
		Chunker:    ChunkerConfig{ChunkSizeWords: 500, OverlapSentences: 2},
		Index:      IndexConfig{Dir: "data"},
		Query:      QueryConfig{TopK: 5},
		Summarizer: SummarizerConfig{MaxSentences: 3},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// applyConfigDefaults fills settings a file or the environment left unusable.
func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.BatchSize <= 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Embedder.Concurrency <= 0 {
		cfg.Embedder.Concurrency = def.Embedder.Concurrency
	}
	if cfg.Embedder.Hashing.Dimension <= 0 {
		cfg.Embedder.Hashing.Dimension = def.Embedder.Hashing.Dimension
	}
	if cfg.Embedder.OpenAI.APIKeyEnv == "" {
		cfg.Embedder.OpenAI.APIKeyEnv = def.Embedder.OpenAI.APIKeyEnv
	}
	if cfg.Embedder.OpenAI.Model == "" {
		cfg.Embedder.OpenAI.Model = def.Embedder.OpenAI.Model
	}
	if cfg.Embedder.OpenAI.TimeoutSecs <= 0 {
		cfg.Embedder.OpenAI.TimeoutSecs = def.Embedder.OpenAI.TimeoutSecs
	}
	if cfg.Chunker.ChunkSizeWords <= 0 {
		cfg.Chunker.ChunkSizeWords = def.Chunker.ChunkSizeWords
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = def.Index.Dir
	}
	if cfg.Query.TopK <= 0 {
		cfg.Query.TopK = def.Query.TopK
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}
