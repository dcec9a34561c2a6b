package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505050"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6DA95"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F"))

	systemMsgStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#8087A2"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95"))

	notReadyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796"))

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	tileSelectedStyle = tileStyle.
				BorderForeground(lipgloss.Color("#A6DA95")).
				Foreground(lipgloss.Color("#A6DA95"))
)
