// Package publish writes a board as a tree of Markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"boardview/internal/board"
)

type WriteOptions struct {
	IncludeArchived bool
	Overwrite       bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBoard writes index.md and one cards/<id>.md page per card under toDir.
func WriteBoard(st *board.State, toDir string, opt WriteOptions) (WriteResult, error) {
	if st == nil {
		return WriteResult{}, errors.New("missing board")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	cardsDir := filepath.Join(toDir, "cards")
	if err := os.MkdirAll(cardsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	ropt := RenderOptions{IncludeArchived: opt.IncludeArchived}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderBoardMarkdown(st, ropt)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on first error.
	written := []string{indexPath}
	lists := st.VisibleLists()
	if opt.IncludeArchived {
		lists = append(lists, st.ClosedLists()...)
	}
	for _, l := range lists {
		for _, c := range cardsFor(st, l, ropt) {
			md, err := RenderCardMarkdown(st, c.ID, ropt)
			if err != nil {
				return WriteResult{}, err
			}
			p := filepath.Join(cardsDir, c.ID+".md")
			if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
				return WriteResult{}, err
			}
			written = append(written, p)
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
