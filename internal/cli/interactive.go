package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"semsearch/internal/repl"
	"semsearch/internal/tui"
)

func newInteractiveCmd(app *App) *cobra.Command {
	var plain bool
	var topK int
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Answer queries until quit, exit or q",
		Long: `Loads the saved index once and answers queries in a loop. A full-screen
interface is used when stdin is a terminal; otherwise, or with --plain, queries
are read line by line. Errors for a single query are reported and the session
continues. Ctrl-C ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := app.resolveTopK(topK)
			if err != nil {
				return err
			}
			engine, manifest, err := app.service.Open()
			if err != nil {
				return &loadError{err: err}
			}
			ctx := cmd.Context()

			if plain || !isTerminal(cmd.InOrStdin()) {
				return repl.Run(ctx, engine, cmd.InOrStdin(), cmd.OutOrStdout(), k)
			}
			header := fmt.Sprintf("semsearch  %d chunks  %s", engine.Size(), manifest.Embedder)
			m := tui.New(ctx, engine, k, header, manifest.Summary)
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use the line-oriented prompt even on a terminal")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results per query (default from config)")
	return cmd
}

func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
