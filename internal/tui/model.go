package tui

import (
	"fmt"
	"sort"
	"strings"

	"boardview/internal/board"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeBoard mode = iota
	modeMoveCard
	modeMoveList
	modeDetail
	modeFilter
)

// column is one visible list as currently drawn, after filtering.
type column struct {
	list  board.ListView
	cards []board.CardView
}

// carry is the card or list picked up in a move mode.
type carry struct {
	id         string
	fromListID string
	fromCol    int
	fromRow    int
	toCol      int
	toIndex    int
}

type Model struct {
	eng   *board.Engine
	title string
	keys  keyMap
	help  help.Model

	width  int
	height int

	mode mode
	col  int
	row  int

	carry  carry
	filter textinput.Model
	query  string
	detail viewport.Model

	status    string
	statusErr bool
}

func NewModel(eng *board.Engine, title string) Model {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "filter cards"
	in.CharLimit = 120

	return Model{
		eng:    eng,
		title:  title,
		keys:   defaultKeyMap(),
		help:   help.New(),
		filter: in,
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// columns projects the engine state and applies the card filter.
func (m Model) columns() []column {
	v := board.Project(m.eng.State())
	cols := make([]column, 0, len(v.Lists))
	for _, l := range v.Lists {
		cols = append(cols, column{list: l, cards: filterCards(l.Cards, m.query)})
	}
	return cols
}

// filterCards keeps cards whose name fuzzy-matches query, in board order.
func filterCards(cards []board.CardView, query string) []board.CardView {
	query = strings.TrimSpace(query)
	if query == "" {
		return cards
	}
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	matches := fuzzy.Find(query, names)
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	out := make([]board.CardView, 0, len(matches))
	for _, mt := range matches {
		out = append(out, cards[mt.Index])
	}
	return out
}

func (m *Model) clampSelection(cols []column) {
	if len(cols) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = clamp(m.col, 0, len(cols)-1)
	m.row = clamp(m.row, 0, max(len(cols[m.col].cards)-1, 0))
}

func (m Model) selectedCard(cols []column) (board.CardView, bool) {
	if m.col < 0 || m.col >= len(cols) {
		return board.CardView{}, false
	}
	cards := cols[m.col].cards
	if m.row < 0 || m.row >= len(cards) {
		return board.CardView{}, false
	}
	return cards[m.row], true
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.mode == modeDetail {
			m.detail.Width = msg.Width
			m.detail.Height = m.bodyHeight()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMoveCard:
			return m.updateMoveCard(msg)
		case modeMoveList:
			return m.updateMoveList(msg)
		case modeDetail:
			return m.updateDetail(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateBoard(msg)
		}
	}

	if m.mode == modeDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.col--
	case key.Matches(msg, m.keys.Right):
		m.col++
	case key.Matches(msg, m.keys.Up):
		m.row--
	case key.Matches(msg, m.keys.Down):
		m.row++
	case key.Matches(msg, m.keys.Cancel):
		if m.query != "" {
			m.query = ""
			m.filter.SetValue("")
			m.setStatus("filter cleared")
		}
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.filter.SetValue(m.query)
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Open):
		if c, ok := m.selectedCard(cols); ok {
			m.openDetail(c.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.MoveCard):
		if m.query != "" {
			m.setError(fmt.Errorf("clear the filter before moving cards"))
			return m, nil
		}
		c, ok := m.selectedCard(cols)
		if !ok {
			return m, nil
		}
		m.carry = carry{id: c.ID, fromListID: c.ListID, fromCol: m.col, fromRow: m.row, toCol: m.col, toIndex: m.row}
		m.mode = modeMoveCard
		m.setStatus("moving %q", c.Name)
		return m, nil
	case key.Matches(msg, m.keys.MoveList):
		if len(cols) == 0 {
			return m, nil
		}
		l := cols[m.col].list
		m.carry = carry{id: l.ID, fromCol: m.col, fromRow: m.row, toCol: m.col, toIndex: m.col}
		m.mode = modeMoveList
		m.setStatus("moving list %q", l.Name)
		return m, nil
	}
	m.clampSelection(cols)
	return m, nil
}

// maxDropIndex is the last valid index in the destination while carrying a
// card: the carried card no longer counts in its own list.
func (m Model) maxDropIndex(cols []column, col int) int {
	n := len(cols[col].cards)
	if col == m.carry.fromCol {
		return n - 1
	}
	return n
}

func (m Model) updateMoveCard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.carry.toCol = clamp(m.carry.toCol-1, 0, len(cols)-1)
	case key.Matches(msg, m.keys.Right):
		m.carry.toCol = clamp(m.carry.toCol+1, 0, len(cols)-1)
	case key.Matches(msg, m.keys.Up):
		m.carry.toIndex--
	case key.Matches(msg, m.keys.Down):
		m.carry.toIndex++
	case key.Matches(msg, m.keys.Cancel):
		m.cancelCarry(board.IntentCard)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		c := m.carry
		dst := cols[c.toCol].list.ID
		m.mode = modeBoard
		if err := m.eng.MoveCard(c.id, c.fromListID, dst, c.toIndex); err != nil {
			m.setError(err)
			m.col, m.row = c.fromCol, c.fromRow
			return m, nil
		}
		m.col = c.toCol
		m.row = m.eng.State().CardIndex(c.id)
		m.setStatus("card moved to %s", cols[c.toCol].list.Name)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.carry.toIndex = clamp(m.carry.toIndex, 0, max(m.maxDropIndex(cols, m.carry.toCol), 0))
	return m, nil
}

func (m Model) updateMoveList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.carry.toIndex--
	case key.Matches(msg, m.keys.Right):
		m.carry.toIndex++
	case key.Matches(msg, m.keys.Cancel):
		m.cancelCarry(board.IntentList)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		c := m.carry
		m.mode = modeBoard
		if err := m.eng.MoveList(c.id, c.toIndex); err != nil {
			m.setError(err)
			return m, nil
		}
		m.col = m.eng.State().ListIndex(c.id)
		m.clampSelection(m.columns())
		m.setStatus("list moved")
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.carry.toIndex = clamp(m.carry.toIndex, 0, max(len(cols)-1, 0))
	m.carry.toCol = m.carry.toIndex
	return m, nil
}

// cancelCarry reports the abandoned gesture to the engine, which leaves the
// board untouched.
func (m *Model) cancelCarry(kind board.IntentKind) {
	c := m.carry
	in := board.MoveIntent{Kind: kind, ID: c.id, FromListID: c.fromListID, ToIndex: c.toIndex, Cancelled: true}
	if err := m.eng.Apply(in); err != nil {
		m.setError(err)
	} else {
		m.setStatus("move cancelled")
	}
	m.mode = modeBoard
	m.col, m.row = c.fromCol, c.fromRow
	m.carry = carry{}
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.query = strings.TrimSpace(m.filter.Value())
		m.filter.Blur()
		m.mode = modeBoard
		m.clampSelection(m.columns())
		return m, nil
	case tea.KeyEsc:
		m.query = ""
		m.filter.SetValue("")
		m.filter.Blur()
		m.mode = modeBoard
		m.clampSelection(m.columns())
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.query = strings.TrimSpace(m.filter.Value())
	m.clampSelection(m.columns())
	return m, cmd
}

func (m *Model) openDetail(cardID string) {
	st := m.eng.State()
	c, ok := st.Card(cardID)
	if !ok {
		return
	}
	m.detail = viewport.New(m.width, m.bodyHeight())
	m.detail.SetContent(renderCardDetail(st, c, max(m.width-2, 20)))
	m.mode = modeDetail
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Quit) {
		m.mode = modeBoard
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
