package tui

import (
	"fmt"
	"strings"

	"boardview/internal/board"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	columnWidth = 30
	columnGap   = 1
)

// drawnCard is a card as it appears on screen in the current mode.
type drawnCard struct {
	card     board.CardView
	selected bool
	carried  bool
}

type drawnColumn struct {
	list    board.ListView
	cards   []drawnCard
	focused bool
	carried bool
}

func (m Model) bodyHeight() int {
	// header, status and help lines
	return max(m.height-3, 1)
}

func (m Model) View() string {
	header := m.renderHeader()
	var body string
	if m.mode == modeDetail {
		body = m.detail.View()
	} else {
		body = renderColumns(m.layout(m.columns()), m.width, m.bodyHeight())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		fitPane(body, m.width, m.bodyHeight()),
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m Model) renderHeader() string {
	c := m.eng.State().Counts()
	title := lipgloss.NewStyle().Bold(true).Render(m.title)
	meta := fmt.Sprintf("%d lists · %d cards", c.Lists, c.Cards)
	if c.ClosedCards > 0 || c.ClosedLists > 0 {
		meta += fmt.Sprintf(" · %d archived", c.ClosedCards+c.ClosedLists)
	}
	line := title + "  " + styleMuted().Render(meta)
	switch {
	case m.mode == modeFilter:
		line += "  " + m.filter.View()
	case m.query != "":
		line += "  " + lipgloss.NewStyle().Foreground(colorAccent).Render("/"+m.query)
	}
	return xansi.Truncate(line, m.width, "…")
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	st := styleMuted()
	if m.statusErr {
		st = styleError()
	}
	return xansi.Truncate(st.Render(m.status), m.width, "…")
}

func (m Model) renderHelp() string {
	switch m.mode {
	case modeMoveCard, modeMoveList:
		return m.help.View(moveKeyMap{m.keys})
	case modeDetail:
		return styleMuted().Render("esc close · ↑/↓ scroll")
	}
	return m.help.View(m.keys)
}

// layout applies the current mode to the projected columns: a carried card is
// shown at its drop position, a carried list at its new index.
func (m Model) layout(cols []column) []drawnColumn {
	out := make([]drawnColumn, len(cols))
	for i, c := range cols {
		dc := drawnColumn{list: c.list, focused: i == m.col}
		for j, card := range c.cards {
			dc.cards = append(dc.cards, drawnCard{card: card, selected: i == m.col && j == m.row})
		}
		out[i] = dc
	}

	switch m.mode {
	case modeMoveCard:
		src := m.carry.fromCol
		if src < 0 || src >= len(out) || m.carry.fromRow >= len(out[src].cards) {
			return out
		}
		picked := out[src].cards[m.carry.fromRow]
		picked.selected, picked.carried = true, true
		out[src].cards = append(out[src].cards[:m.carry.fromRow:m.carry.fromRow], out[src].cards[m.carry.fromRow+1:]...)
		for i := range out {
			out[i].focused = i == m.carry.toCol
			for j := range out[i].cards {
				out[i].cards[j].selected = false
			}
		}
		dst := &out[m.carry.toCol]
		at := clamp(m.carry.toIndex, 0, len(dst.cards))
		dst.cards = append(dst.cards[:at:at], append([]drawnCard{picked}, dst.cards[at:]...)...)

	case modeMoveList:
		from := m.carry.fromCol
		if from < 0 || from >= len(out) {
			return out
		}
		picked := out[from]
		picked.carried, picked.focused = true, true
		rest := append(out[:from:from], out[from+1:]...)
		for i := range rest {
			rest[i].focused = false
		}
		at := clamp(m.carry.toIndex, 0, len(rest))
		out = append(rest[:at:at], append([]drawnColumn{picked}, rest[at:]...)...)
	}
	return out
}

func renderColumns(cols []drawnColumn, width, height int) string {
	if len(cols) == 0 {
		return styleMuted().Render("This board has no open lists.")
	}
	visible := max((width+columnGap)/(columnWidth+columnGap), 1)
	focus := 0
	for i, c := range cols {
		if c.focused {
			focus = i
		}
	}
	first := 0
	if focus >= visible {
		first = focus - visible + 1
	}
	last := min(first+visible, len(cols))

	rendered := make([]string, 0, last-first)
	for _, c := range cols[first:last] {
		rendered = append(rendered, renderColumn(c, height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(rendered, columnGap)...)
}

func joinWithGap(parts []string, gap int) []string {
	if len(parts) < 2 {
		return parts
	}
	sp := strings.Repeat(" ", gap)
	out := make([]string, 0, len(parts)*2-1)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sp)
		}
		out = append(out, p)
	}
	return out
}

func renderColumn(c drawnColumn, height int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Width(columnWidth).Padding(0, 1).
		Foreground(colorSurfaceFg).Background(colorHeaderBg)
	if c.focused {
		headerStyle = headerStyle.Foreground(colorSelectedFg).Background(colorSelectedBg)
	}
	if c.carried {
		headerStyle = headerStyle.Foreground(colorAccent)
	}
	name := xansi.Truncate(c.list.Name, columnWidth-8, "…")
	header := headerStyle.Render(fmt.Sprintf("%s  %d", name, len(c.list.Cards)))

	blocks := make([]string, 0, len(c.cards))
	selected := -1
	for i, dc := range c.cards {
		blocks = append(blocks, renderCard(dc, columnWidth))
		if dc.selected {
			selected = i
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, styleMuted().Width(columnWidth).Padding(0, 1).Render("(empty)"))
	}

	// Scroll so the selected card stays in view.
	avail := height - 1
	start := 0
	if selected >= 0 {
		used := 0
		for i := selected; i >= 0; i-- {
			used += lipgloss.Height(blocks[i])
			if used > avail {
				break
			}
			start = i
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Left, blocks[start:]...)
	return fitPane(lipgloss.JoinVertical(lipgloss.Left, header, body), columnWidth, height)
}

func renderCard(dc drawnCard, width int) string {
	inner := width - 4 // border and padding
	c := dc.card

	lines := make([]string, 0, 4)
	if len(c.Labels) > 0 {
		chips := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			chips = append(chips, labelStyle(l.Color).Render(l.Name))
		}
		lines = append(lines, xansi.Truncate(strings.Join(chips, " "), inner, "…"))
	}
	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = "(untitled)"
	}
	nameStyle := lipgloss.NewStyle().Width(inner)
	if dc.selected {
		nameStyle = nameStyle.Bold(true)
	}
	lines = append(lines, nameStyle.Render(name))
	if b := renderBadges(c); b != "" {
		lines = append(lines, xansi.Truncate(b, inner, "…"))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Padding(0, 1).
		Width(width - 2)
	switch {
	case dc.carried:
		border = border.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(colorAccent)
	case dc.selected:
		border = border.BorderForeground(colorSelBorder)
	}
	return border.Render(strings.Join(lines, "\n"))
}

func renderBadges(c board.CardView) string {
	b := c.Badges
	parts := make([]string, 0, 5)
	muted := styleMuted()
	if b.Description {
		parts = append(parts, muted.Render("≡"))
	}
	if b.Due != nil {
		due := b.Due.Local().Format("Jan 2")
		if b.DueComplete {
			parts = append(parts, lipgloss.NewStyle().Foreground(colorComplete).Render("✓ "+due))
		} else {
			parts = append(parts, muted.Render(due))
		}
	}
	if b.Attachments > 0 {
		parts = append(parts, muted.Render(fmt.Sprintf("@%d", b.Attachments)))
	}
	if b.CheckItems > 0 {
		txt := fmt.Sprintf("☑ %d/%d", b.CheckItemsChecked, b.CheckItems)
		if b.ChecklistComplete {
			parts = append(parts, lipgloss.NewStyle().Foreground(colorComplete).Render(txt))
		} else {
			parts = append(parts, muted.Render(txt))
		}
	}
	for _, mem := range c.Members {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorAccent).Render(mem.Initials))
	}
	return strings.Join(parts, " ")
}

// fitPane cuts or pads s to exactly height lines no wider than width.
func fitPane(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	if width > 0 {
		for i, ln := range lines {
			if xansi.StringWidth(ln) > width {
				lines[i] = xansi.Truncate(ln, width, "")
			}
		}
	}
	return strings.Join(lines, "\n")
}
