package cli

import (
	"boardview/internal/store"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type fileRow struct {
	store.FileInfo
	Uploaded string `json:"uploaded"`
	SizeText string `json:"sizeText"`
}

func newFilesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List stored exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			infos, err := s.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]fileRow, 0, len(infos))
			for _, fi := range infos {
				rows = append(rows, fileRow{
					FileInfo: fi,
					Uploaded: humanize.Time(fi.UploadedAt),
					SizeText: humanize.Bytes(uint64(max(fi.Size, 0))),
				})
			}
			hints := []string{"boardview upload <path>"}
			if len(rows) > 0 {
				hints = []string{"boardview open " + rows[0].Name, "boardview serve --open"}
			}
			return writeOut(cmd, app, map[string]any{
				"data":   rows,
				"meta":   map[string]any{"dir": s.Dir, "count": len(rows)},
				"_hints": hints,
			})
		},
	}
}
