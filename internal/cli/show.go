package cli

import (
	"boardview/internal/board"

	"github.com/spf13/cobra"
)

type archivedCard struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ListID string `json:"idList"`
}

type archivedList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type archivedView struct {
	Lists    []archivedList `json:"lists"`
	Cards    []archivedCard `json:"cards"`
	Detached []archivedCard `json:"detached"`
}

func newShowCmd(app *App) *cobra.Command {
	var closed bool

	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Print the visible board projection of a stored export",
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
			view := board.Project(st)

			meta := map[string]any{"file": name, "counts": view.Counts}
			if closed {
				meta["archived"] = archived(st)
			}
			hints := []string{"boardview open " + name}
			if !closed && (view.Counts.ClosedCards > 0 || view.Counts.ClosedLists > 0) {
				hints = append(hints, "boardview show --closed "+name)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   view,
				"meta":   meta,
				"_hints": hints,
			})
		},
	}

	cmd.Flags().BoolVar(&closed, "closed", false, "Also list archived lists and cards")
	return cmd
}

func archived(st *board.State) archivedView {
	out := archivedView{
		Lists:    []archivedList{},
		Cards:    []archivedCard{},
		Detached: []archivedCard{},
	}
	for _, l := range st.ClosedLists() {
		out.Lists = append(out.Lists, archivedList{ID: l.ID, Name: l.Name})
	}
	lists := append(st.VisibleLists(), st.ClosedLists()...)
	for _, l := range lists {
		for _, c := range st.ClosedCards(l.ID) {
			out.Cards = append(out.Cards, archivedCard{ID: c.ID, Name: c.Name, ListID: c.ListID})
		}
	}
	for _, c := range st.Detached() {
		out.Detached = append(out.Detached, archivedCard{ID: c.ID, Name: c.Name, ListID: c.ListID})
	}
	return out
}
