package model

import "github.com/charmbracelet/lipgloss"

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(8)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(12).
			Align(lipgloss.Right)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Italic(true).
			MarginTop(1).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// ratio bar, colored by pressure
	barLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	barHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	// process table
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	rowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pidStyle     = lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
	commandStyle = lipgloss.NewStyle().Width(36).MaxHeight(1).PaddingLeft(2)
	memoryStyle  = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
)
