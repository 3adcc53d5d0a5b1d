package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
)

// scoreBar renders a 20-cell confidence bar like "████████░░░░░░░░░░░░".
func scoreBar(score float32) string {
	const cells = 20
	filled := int(score * cells)
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	bar := ""
	for i := 0; i < cells; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return barStyle.Render(bar)
}

// printScore prints one owner's score line.
func printScore(owner string, score float32, best bool) {
	name := owner
	if best {
		name = labelStyle.Render(owner + " ◀")
	} else {
		name = dimStyle.Render(name)
	}
	fmt.Printf("  %-24s %s %.4f\n", name, scoreBar(score), score)
}
