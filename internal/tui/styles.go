package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorMuted  = lipgloss.AdaptiveColor{Light: "244", Dark: "243"}
	colorAccent = lipgloss.AdaptiveColor{Light: "25", Dark: "75"}
	colorDanger = lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}

	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleSelected = lipgloss.NewStyle().Bold(true)
	styleDone     = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	styleAlert    = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	styleModal    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	styleConfirm = styleModal.BorderForeground(colorDanger)
)

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "urgent":
		return lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	case "important":
		return lipgloss.NewStyle().Foreground(colorWarn)
	}
	return styleMuted
}
