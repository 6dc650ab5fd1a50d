package summary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/router"
	"github.com/abhisek/intervu/internal/screen"
	"github.com/abhisek/intervu/internal/screens/history"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/store"
	"github.com/abhisek/intervu/internal/ui/layout"
	"github.com/abhisek/intervu/internal/ui/theme"
)

// Options configure the summary screen.
type Options struct {
	// ExportDir receives JSON exports, the working directory if empty.
	ExportDir string

	// Events backs the history link. Nil hides it.
	Events store.EventRepo

	Now func() time.Time
}

type exportedMsg struct {
	Path string
	Err  error
}

// SummaryScreen lists the answered questions of a finished session.
type SummaryScreen struct {
	summary  *session.Summary
	opts     Options
	selected int
	expanded map[int]bool

	exportPath string
	exportErr  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeInterceptor = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary, opts Options) *SummaryScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SummaryScreen{
		summary:  summary,
		opts:     opts,
		expanded: make(map[int]bool),
	}
}

// Summary returns the summary on display.
func (s *SummaryScreen) Summary() *session.Summary { return s.summary }

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

// InterceptsEscape sends esc back to setup rather than to review.
func (s *SummaryScreen) InterceptsEscape() bool { return true }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "X", Description: "Export JSON"},
	}
	if s.opts.Events != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "N/Esc", Description: "New session"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		s.exportPath, s.exportErr = msg.Path, ""
		switch {
		case errors.Is(msg.Err, session.ErrNothingToExport):
			s.exportErr = "nothing to export yet"
		case msg.Err != nil:
			s.exportErr = msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "n", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.summary.Answered)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "x":
			return s, s.export()
		case "h":
			if s.opts.Events != nil {
				next := history.New(s.opts.Events)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) export() tea.Cmd {
	sum, dir, now := s.summary, s.opts.ExportDir, s.opts.Now()
	return func() tea.Msg {
		path, err := session.ExportFile(dir, sum, now)
		return exportedMsg{Path: path, Err: err}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder

	b.WriteString(center.Foreground(theme.Primary).Bold(true).
		Render("Session complete!"))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center.Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s · %s · %d:%02d", sum.Topic, sum.Difficulty, mins, secs)))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.Text).
		Render(fmt.Sprintf("Questions seen: %d        Answered: %d        Evaluated: %d",
			sum.Served, len(sum.Answered), sum.Evaluated)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if len(sum.Answered) == 0 {
		b.WriteString(center.Foreground(theme.TextDim).Italic(true).
			Render("No questions were answered in this session."))
		b.WriteString("\n")
	}

	inner := min(width-8, 80)
	for i, r := range sum.Answered {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		mark := lipgloss.NewStyle().Foreground(theme.TextDim).Render("○")
		switch {
		case r.EvaluationFailed:
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		case r.Feedback != nil:
			mark = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		}
		line := prefix + mark + " " + style.Render(truncate(r.Prompt, inner-4))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "Your answer: " + r.UserAnswer
			if r.Feedback != nil {
				detail += "\nFeedback: " + r.Feedback.Short
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).PaddingLeft(4).Foreground(theme.TextDim).Render(detail)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case s.exportPath != "":
		b.WriteString(center.Foreground(theme.Success).Render("Exported to " + s.exportPath))
	case s.exportErr != "":
		b.WriteString(center.Foreground(theme.Error).Render("Export failed: " + s.exportErr))
	}

	return b.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
