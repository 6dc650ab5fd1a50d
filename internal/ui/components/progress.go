package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/ui/theme"
)

// QueueBar shows the position in the question queue, e.g. "3 / 7" with a
// bar. Pending adds a trailing "+" while more questions are on the way.
type QueueBar struct {
	Position int // 1-based
	Total    int
	Pending  bool
	Width    int
}

// View renders the bar.
func (p QueueBar) View() string {
	counter := fmt.Sprintf("%d / %d", p.Position, p.Total)
	if p.Pending {
		counter += "+"
	}
	counter = lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + counter)

	barWidth := p.Width - lipgloss.Width(counter)
	if barWidth < 4 {
		barWidth = 4
	}

	var frac float64
	if p.Total > 0 {
		frac = float64(p.Position) / float64(p.Total)
	}
	filled := int(float64(barWidth) * frac)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		counter
}
