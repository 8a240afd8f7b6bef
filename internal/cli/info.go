package cli

import (
	"github.com/spf13/cobra"
)

func newInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the saved index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := app.service.Manifest()
			if err != nil {
				return &loadError{err: err}
			}
			paths := app.service.Paths()
			cmd.Printf("Index:      %s\n", paths.Index)
			cmd.Printf("Metadata:   %s\n", paths.Metadata)
			cmd.Printf("Build ID:   %s\n", m.BuildID)
			cmd.Printf("Created:    %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			cmd.Printf("Embedder:   %s\n", m.Embedder)
			cmd.Printf("Dimension:  %d\n", m.Dimension)
			cmd.Printf("Chunks:     %d\n", m.Rows)
			cmd.Printf("Sources:    %d\n", len(m.Sources))
			for _, s := range m.Sources {
				cmd.Printf("  %s\n", s)
			}
			if m.Summary != "" {
				cmd.Printf("Summary:    %s\n", m.Summary)
			}
			return nil
		},
	}
}
