package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#CBA6F7")
	blue    = lipgloss.Color("#89B4FA")
	red     = lipgloss.Color("#F38BA8")
	txtClr  = lipgloss.Color("#CDD6F4")
	subtext = lipgloss.Color("#A6ADC8")
	base    = lipgloss.Color("#1E1E2E")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1)

	userMsgStyle = lipgloss.NewStyle().
			Foreground(blue)

	assistantMsgStyle = lipgloss.NewStyle().
				Foreground(txtClr)

	errorMsgStyle = lipgloss.NewStyle().
			Foreground(red)

	senderStyle = lipgloss.NewStyle().
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(subtext)

	statusStyle = lipgloss.NewStyle().
			Foreground(subtext).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(txtClr).
			Padding(0, 1)

	focusedButtonStyle = lipgloss.NewStyle().
				Foreground(base).
				Background(accent).
				Bold(true).
				Padding(0, 1)

	navItemStyle = lipgloss.NewStyle().
			Foreground(subtext).
			Padding(0, 1)

	activeNavItemStyle = lipgloss.NewStyle().
				Foreground(base).
				Background(blue).
				Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(red).
			Padding(1, 2)
)
