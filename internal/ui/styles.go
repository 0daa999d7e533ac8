package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	turnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)

	// 按卡牌种类着色
	kindStyles = map[string]lipgloss.Style{
		"disease":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"remedy":    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"bonus":     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"malus":     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"supporter": lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}
)

func kindStyle(kind string) lipgloss.Style {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return dimStyle
}
