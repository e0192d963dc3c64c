package tui

import (
	"github.com/charmbracelet/lipgloss"

	"studyhub/internal/timer"
)

var (
	focusColor      = lipgloss.Color("203")
	shortBreakColor = lipgloss.Color("42")
	longBreakColor  = lipgloss.Color("39")

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)
	clockStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Italic(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func modeColor(mode timer.Mode) lipgloss.Color {
	switch mode {
	case timer.ModeShortBreak:
		return shortBreakColor
	case timer.ModeLongBreak:
		return longBreakColor
	default:
		return focusColor
	}
}

func modeLabel(mode timer.Mode) string {
	switch mode {
	case timer.ModeShortBreak:
		return "SHORT BREAK"
	case timer.ModeLongBreak:
		return "LONG BREAK"
	default:
		return "FOCUS"
	}
}
