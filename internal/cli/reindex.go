package cli

import (
	"github.com/spf13/cobra"
)

func newReindexCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the upload catalog from the files on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := s.Reindex(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":     s.Dir,
					"indexed": n,
				},
				"_hints": []string{"boardview files"},
			})
		},
	}
}
