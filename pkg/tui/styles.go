package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 30

var (
	colorAccent = lipgloss.Color("205")
	colorMuted  = lipgloss.Color("241")
	colorDanger = lipgloss.Color("203")
	colorOK     = lipgloss.Color("78")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorMuted)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Bold(true).
				Foreground(colorAccent)

	activeMarkStyle = lipgloss.NewStyle().
			Foreground(colorOK)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sourceStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(2)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(colorOK).
			PaddingLeft(2)

	errStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	healthOKStyle = lipgloss.NewStyle().
			Foreground(colorOK)

	healthBadStyle = lipgloss.NewStyle().
			Foreground(colorDanger)
)
