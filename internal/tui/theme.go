package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ac picks a palette entry for light and dark terminal backgrounds.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorListBg     lipgloss.TerminalColor = ac("254", "236")
	colorHeaderBg   lipgloss.TerminalColor = ac("252", "238")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorCardBorder lipgloss.TerminalColor = ac("250", "243")
	colorSelBorder  lipgloss.TerminalColor = ac("232", "255")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorComplete   lipgloss.TerminalColor = ac("28", "35")
	colorError      lipgloss.TerminalColor = ac("160", "196")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError).Bold(true)
}

// labelStyle paints a label chip in the label's own color. Colorless labels
// get the muted chrome color.
func labelStyle(hex string) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1)
	if strings.TrimSpace(hex) == "" {
		return st.Foreground(colorSurfaceFg).Background(colorHeaderBg)
	}
	return st.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color(hex))
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts the
// terminal, upgrading to 256 colors when TERM says so.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "256color") && profile != termenv.TrueColor {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
