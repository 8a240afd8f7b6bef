package cli

import (
	"github.com/spf13/cobra"

	"semsearch/internal/loader"
)

func newBuildCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "build [patterns...]",
		Short: "Build the index from input documents",
		Long: `Loads every file matching the given glob patterns, files or directories
(.json, .md, .pdf, .txt), chunks and embeds the extracted text and saves the
index and its metadata. Without arguments the pattern ` + loader.DefaultPattern + ` is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.service.Build(cmd.Context(), args)
			if err != nil {
				return err
			}
			m := report.Manifest
			cmd.Printf("Indexed %d chunks from %d texts in %d documents.\n", report.Chunks, report.Texts, report.Documents)
			cmd.Printf("Build %s: %d vectors of dimension %d (%s) saved to %s\n",
				m.BuildID, m.Rows, m.Dimension, m.Embedder, app.cfg.Index.Dir)
			return nil
		},
	}
}
