package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"boardview/internal/board"
	"boardview/internal/model"
)

type RenderOptions struct {
	IncludeArchived bool
}

// RenderBoardMarkdown renders the board overview: one section per list with
// its cards as links to the card pages written by WriteBoard.
func RenderBoardMarkdown(st *board.State, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	b := st.Board()
	writeLn("# " + titleOr(b.Name, "Untitled board"))
	writeLn("")
	if desc := strings.TrimSpace(b.Desc); desc != "" {
		writeLn(desc)
		writeLn("")
	}
	c := st.Counts()
	writeLn(fmt.Sprintf("%d lists, %d cards", c.Lists, c.Cards))

	lists := st.VisibleLists()
	if opt.IncludeArchived {
		lists = append(lists, st.ClosedLists()...)
	}
	for _, l := range lists {
		writeLn("")
		heading := "## " + titleOr(l.Name, l.ID)
		if l.Closed {
			heading += " (archived)"
		}
		writeLn(heading)
		writeLn("")

		cards := cardsFor(st, l, opt)
		if len(cards) == 0 {
			writeLn("_No cards._")
			continue
		}
		for _, card := range cards {
			line := "- [" + escapeLinkText(titleOr(card.Name, card.ID)) + "](cards/" + card.ID + ".md)"
			if card.Closed {
				line += " (archived)"
			}
			if extra := cardSummary(st, card); extra != "" {
				line += " " + extra
			}
			writeLn(line)
		}
	}
	return buf.String()
}

// RenderCardMarkdown renders one card page.
func RenderCardMarkdown(st *board.State, cardID string, opt RenderOptions) (string, error) {
	card, ok := st.Card(strings.TrimSpace(cardID))
	if !ok {
		return "", fmt.Errorf("card not found: %s", cardID)
	}
	if card.Closed && !opt.IncludeArchived {
		return "", fmt.Errorf("card archived (use --closed): %s", card.ID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + titleOr(card.Name, card.ID))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + card.ID)
	if l, ok := st.List(card.ListID); ok {
		writeLn("- List: " + titleOr(l.Name, l.ID))
	} else {
		writeLn("- List: " + card.ListID)
	}
	if card.Closed {
		writeLn("- Archived: true")
	}
	if labels := st.LabelsFor(card); len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for _, lb := range labels {
			names = append(names, lb.DisplayName())
		}
		writeLn("- Labels: " + strings.Join(names, ", "))
	}
	if members := st.MembersFor(card); len(members) > 0 {
		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, m.FullName)
		}
		writeLn("- Members: " + strings.Join(names, ", "))
	}
	if card.Due != nil {
		due := card.Due.UTC().Format(time.RFC3339)
		if card.DueComplete {
			due += " (done)"
		}
		writeLn("- Due: " + due)
	}
	if t, ok := card.CreatedAt(); ok {
		writeLn("- Created: " + t.UTC().Format(time.RFC3339))
	}
	if card.URL != "" {
		writeLn("- URL: " + card.URL)
	}

	if desc := strings.TrimSpace(card.Desc); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}

	for _, cl := range st.ChecklistsFor(card) {
		done, total, _ := cl.Progress()
		writeLn("")
		writeLn(fmt.Sprintf("## %s (%d/%d)", titleOr(cl.Name, "Checklist"), done, total))
		writeLn("")
		for _, it := range cl.SortedItems() {
			mark := "[ ]"
			if it.State == model.CheckItemComplete {
				mark = "[x]"
			}
			writeLn("- " + mark + " " + it.Name)
		}
	}

	if len(card.Attachments) > 0 {
		writeLn("")
		writeLn("## Attachments")
		writeLn("")
		for _, a := range card.Attachments {
			if a.URL == "" {
				writeLn("- " + a.Name)
				continue
			}
			writeLn("- [" + escapeLinkText(titleOr(a.Name, a.URL)) + "](" + a.URL + ")")
		}
	}
	return buf.String(), nil
}

func cardsFor(st *board.State, l model.List, opt RenderOptions) []model.Card {
	if opt.IncludeArchived {
		return st.AllCards(l.ID)
	}
	return st.VisibleCardsForList(l.ID)
}

func cardSummary(st *board.State, c model.Card) string {
	var parts []string
	for _, lb := range st.LabelsFor(c) {
		parts = append(parts, "`"+lb.DisplayName()+"`")
	}
	b := board.CardBadges(c)
	if b.CheckItems > 0 {
		parts = append(parts, fmt.Sprintf("☑ %d/%d", b.CheckItemsChecked, b.CheckItems))
	}
	if b.Due != nil {
		parts = append(parts, "due "+b.Due.UTC().Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

func titleOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
