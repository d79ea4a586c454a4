package tui

import (
	"fmt"
	"strings"

	"boardview/internal/board"
	"boardview/internal/model"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
)

func renderCardDetail(st *board.State, c model.Card, width int) string {
	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render(title))
		b.WriteString("\n")
	}
	muted := styleMuted()

	b.WriteString(lipgloss.NewStyle().Bold(true).Width(width).Render(c.Name))
	b.WriteString("\n")

	where := "in list "
	if l, ok := st.List(c.ListID); ok {
		where += l.Name
		if l.Closed {
			where += " (archived)"
		}
	} else {
		where += c.ListID
	}
	if c.Closed {
		where += " · card archived"
	}
	if t, ok := c.CreatedAt(); ok {
		where += " · created " + humanize.Time(t)
	}
	b.WriteString(muted.Render(where))
	b.WriteString("\n")

	if labels := st.LabelsFor(c); len(labels) > 0 {
		chips := make([]string, 0, len(labels))
		for _, l := range labels {
			chips = append(chips, labelStyle(l.Color.Hex()).Render(l.DisplayName()))
		}
		b.WriteString("\n" + strings.Join(chips, " ") + "\n")
	}
	if members := st.MembersFor(c); len(members) > 0 {
		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, m.FullName)
		}
		b.WriteString("Members: " + strings.Join(names, ", ") + "\n")
	}
	if c.Due != nil {
		due := "Due " + c.Due.Local().Format("Mon Jan 2, 2006 15:04")
		if c.DueComplete {
			due = lipgloss.NewStyle().Foreground(colorComplete).Render(due + " ✓")
		}
		b.WriteString(due + "\n")
	}

	if desc := renderMarkdown(c.Desc, width); desc != "" {
		section("Description")
		b.WriteString(desc)
		b.WriteString("\n")
	}

	for _, cl := range st.ChecklistsFor(c) {
		done, total, pct := cl.Progress()
		section(fmt.Sprintf("%s  %d/%d (%d%%)", cl.Name, done, total, pct))
		for _, it := range cl.SortedItems() {
			mark := "[ ]"
			line := it.Name
			if it.State == model.CheckItemComplete {
				mark = "[x]"
				line = muted.Strikethrough(true).Render(line)
			}
			b.WriteString(mark + " " + line + "\n")
		}
	}

	if len(c.Attachments) > 0 {
		section("Attachments")
		for _, a := range c.Attachments {
			name := a.Name
			if name == "" {
				name = a.URL
			}
			meta := a.Extension()
			if !a.Date.IsZero() {
				meta = strings.TrimSpace(meta + " " + humanize.Time(a.Date))
			}
			b.WriteString("• " + name)
			if meta != "" {
				b.WriteString("  " + muted.Render(meta))
			}
			b.WriteString("\n")
			if a.URL != "" && a.URL != name {
				b.WriteString("  " + muted.Render(a.URL) + "\n")
			}
		}
	}

	if c.URL != "" {
		b.WriteString("\n" + muted.Render(c.URL) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
