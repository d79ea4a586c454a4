package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	MoveCard key.Binding
	MoveList key.Binding
	Open     key.Binding
	Filter   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev list")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next list")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveCard: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move card")),
		MoveList: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "move list")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open card")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop here")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveCard, k.MoveList, k.Open, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.MoveCard, k.MoveList, k.Confirm, k.Cancel},
		{k.Open, k.Filter, k.Help, k.Quit},
	}
}

// moveKeyMap is the help shown while a card or list is being carried.
type moveKeyMap struct{ keyMap }

func (k moveKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Confirm, k.Cancel}
}
