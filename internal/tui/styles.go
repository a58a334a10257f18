package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/steamshelf/internal/library"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	infoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	errorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")).
			Bold(true)
)

var bandStyles = map[library.ScoreBand]lipgloss.Style{
	library.BandGood:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	library.BandMixed:   lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Bold(true),
	library.BandPoor:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
	library.BandUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

var bandNames = map[library.ScoreBand]string{
	library.BandGood:    "good",
	library.BandMixed:   "mixed",
	library.BandPoor:    "poor",
	library.BandUnknown: "",
}

func renderScore(score *int) string {
	return bandStyles[library.BandOf(score)].Render(library.FormatScore(score))
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
