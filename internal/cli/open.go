package cli

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"boardview/internal/board"
	"boardview/internal/store"
	"boardview/internal/tui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runTUI is replaced in tests.
var runTUI = tui.Run

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <filename>",
		Short: "Open a stored export in the terminal viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := app.store()
			if err != nil {
				return writeErr(cmd, err)
			}
			name, _ := requireArg(args, "filename")
			st, err := loadBoard(cmd.Context(), s, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			eng := board.NewEngine(st, app.logger().WithField("file", name))
			title := st.Board().Name
			if strings.TrimSpace(title) == "" {
				title = name
			}
			if err := runTUI(eng, title); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func loadBoard(ctx context.Context, s store.Store, name string) (*board.State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := s.FetchExport(ctx, name)
	if err != nil {
		return nil, explainLoad(name, err)
	}
	st, err := board.Normalize(doc)
	if err != nil {
		return nil, explainLoad(name, err)
	}
	s.Log.WithFields(log.Fields{"file": name, "lists": len(st.VisibleLists())}).Debug("board loaded")
	return st, nil
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}
