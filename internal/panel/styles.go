package panel

import "github.com/charmbracelet/lipgloss"

var (
	Saffron = lipgloss.Color("#F97316")
	Subtle  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Saffron)
	BotLabel   = lipgloss.NewStyle().Bold(true).Foreground(Saffron)
	UserLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA"))
	DimStyle   = lipgloss.NewStyle().Foreground(Subtle)
)
