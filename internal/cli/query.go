package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"semsearch/internal/query"
	"semsearch/internal/render"
)

func newQueryCmd(app *App) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "query [-k N] <text...>",
		Short: "Run one query against the saved index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := app.resolveTopK(topK)
			if err != nil {
				return err
			}
			engine, err := app.openEngine()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			results, err := engine.Query(cmd.Context(), text, k)
			if err != nil {
				return err
			}
			render.NewPrinter(cmd.OutOrStdout()).Results(text, results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (default from config)")
	return cmd
}

func (a *App) resolveTopK(flag int) (int, error) {
	switch {
	case flag < 0:
		return 0, fmt.Errorf("top-k must be positive, got %d", flag)
	case flag == 0:
		return a.cfg.Query.TopK, nil
	}
	return flag, nil
}

// openEngine loads the saved pair; any failure is reported as an
// unavailable index.
func (a *App) openEngine() (*query.Engine, error) {
	engine, _, err := a.service.Open()
	if err != nil {
		return nil, &loadError{err: err}
	}
	return engine, nil
}
