// Package tui is the terminal board viewer. Cards and lists are moved with
// the keyboard through the same engine the web viewer uses.
package tui

import (
	"boardview/internal/board"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows eng's board until the user quits. Moves are applied to eng.
func Run(eng *board.Engine, title string) error {
	applyColorProfilePreference()
	_, err := tea.NewProgram(NewModel(eng, title), tea.WithAltScreen()).Run()
	return err
}
