package cli

import (
	"errors"
	"strings"

	"boardview/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var closed bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish <filename>",
		Short: "Write a stored export as Markdown pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			s, _, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			name, _ := requireArg(args, "filename")
			st, err := loadBoard(cmd.Context(), s, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteBoard(st, toDir, publish.WriteOptions{
				IncludeArchived: closed,
				Overwrite:       overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"meta":   map[string]any{"file": name, "pages": len(res.Written)},
				"_hints": []string{"boardview docs exports"},
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&closed, "closed", false, "Include archived lists and cards")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}
