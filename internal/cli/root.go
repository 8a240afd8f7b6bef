// Package cli implements the semsearch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"semsearch/internal/chunker"
	"semsearch/internal/config"
	"semsearch/internal/domain"
	"semsearch/internal/logging"
	"semsearch/internal/service"
	"semsearch/internal/summarizer"
)

// App carries the process streams and the state resolved before a
// subcommand runs.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// EmbedderFactory overrides NewEmbedder, mainly for tests.
	EmbedderFactory func(config.EmbedderConfig) (domain.Embedder, error)

	configPath string
	indexDir   string
	logLevel   string

	cfg     *config.AppConfig
	logger  *slog.Logger
	service *service.Service
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(app.Stderr, "Error:", err)
	}
	return ExitCode(err)
}

// NewRootCommand assembles the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "semsearch",
		Short: "Semantic search over scraped documents",
		Long: `semsearch splits documents into overlapping sentence chunks, embeds them
and answers natural-language questions with the most similar chunks.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to a YAML or TOML config file (default: ./config.yaml, ./config.toml or ~/.config/semsearch/config.yaml)")
	root.PersistentFlags().StringVar(&app.indexDir, "index-dir", "", "directory holding index.bin and metadata.json (overrides config)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newBuildCmd(app),
		newQueryCmd(app),
		newInteractiveCmd(app),
		newInfoCmd(app),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.AppConfig
		err error
	)
	if a.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(a.configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.indexDir != "" {
		cfg.Index.Dir = a.indexDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(a.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	factory := a.EmbedderFactory
	if factory == nil {
		factory = NewEmbedder
	}
	emb, err := factory(cfg.Embedder)
	if err != nil {
		return err
	}

	splitter := chunker.NewRegexpSplitter()
	a.cfg = cfg
	a.logger = logger
	a.service = service.New(service.Options{
		Embedder:         emb,
		Chunker:          chunker.NewSentenceChunker(splitter, cfg.Chunker.ChunkSizeWords, cfg.Chunker.OverlapSentences),
		Summarizer:       summarizer.NewFrequency(splitter),
		SummarySentences: cfg.Summarizer.MaxSentences,
		BatchSize:        cfg.Embedder.BatchSize,
		Concurrency:      cfg.Embedder.Concurrency,
		IndexDir:         cfg.Index.Dir,
		Logger:           logger,
	})
	logger.Debug("configured", slog.String("embedder", emb.Name()), slog.String("index_dir", cfg.Index.Dir))
	return nil
}
