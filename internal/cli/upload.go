package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Copy a board export into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, settings, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, _ := requireArg(args, "path")
			f, err := os.Open(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()

			info, err := s.Save(cmd.Context(), filepath.Base(path), f, settings.MaxUploadBytes)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": info,
				"meta": map[string]any{"dir": s.Dir},
				"_hints": []string{
					"boardview show " + info.Name,
					"boardview open " + info.Name,
				},
			})
		},
	}
}
