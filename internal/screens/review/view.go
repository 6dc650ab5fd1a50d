package review

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/navigation"
	"github.com/abhisek/intervu/internal/stream"
	"github.com/abhisek/intervu/internal/ui/components"
	"github.com/abhisek/intervu/internal/ui/layout"
	"github.com/abhisek/intervu/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func cardWidth(width int) int {
	w := width - 8
	if w > 96 {
		w = 96
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (s *Screen) View(width, height int) string {
	if s.mode == modeConfirmQuit {
		return s.renderQuitConfirm(width)
	}

	gap := "\n\n"
	if layout.IsCompactHeight(height) {
		gap = "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderQueueBar(width))
	b.WriteString(gap)

	rec, ok := s.sess.Active()
	if !ok {
		b.WriteString(s.renderEmpty(width))
		return b.String()
	}

	b.WriteString(s.renderCard(rec, width))
	b.WriteString("\n")
	b.WriteString(s.renderStatus(width))
	return b.String()
}

func (s *Screen) renderQueueBar(width int) string {
	st := s.sess.Nav.State()
	pos := 0
	if st.HasActive {
		pos = st.ActiveIndex + 1
	}
	bar := components.QueueBar{
		Position: pos,
		Total:    s.sess.Stream.Len(),
		Pending:  !s.sess.Stream.Fetch().Exhausted,
		Width:    cardWidth(width),
	}
	prev, next := "  ", "  "
	if s.sess.Nav.CanGoPrevious() {
		prev = "◂ "
	}
	if s.sess.Nav.CanGoNext() {
		next = " ▸"
	}
	line := theme.Hint.Render(prev) + bar.View() + theme.Hint.Render(next)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}

func (s *Screen) renderEmpty(width int) string {
	text := "No questions yet."
	if s.sess.Nav.Loading() {
		text = s.spinnerFrame() + " Loading questions..."
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n" + text)
}

// renderCard draws the active question, shifted by the drag offset.
func (s *Screen) renderCard(rec stream.Record, width int) string {
	cw := cardWidth(width)
	inner := cw - 6

	var b strings.Builder
	st := s.sess.Nav.State()
	b.WriteString(theme.Label.Render(fmt.Sprintf("Question %d", st.ActiveIndex+1)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(inner).Render(rec.Prompt))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Your answer"))
	b.WriteString("\n")
	if s.mode == modeEdit {
		b.WriteString(s.answer.View())
	} else if text := s.sess.Capture.Text(); strings.TrimSpace(text) != "" {
		b.WriteString(theme.Body.Width(inner).Render(text))
	} else {
		hint := "No answer yet. Press enter to type or s to dictate."
		if layout.IsCompactWidth(width) {
			hint = "enter: type  s: dictate"
		}
		b.WriteString(theme.Hint.Render(hint))
	}
	b.WriteString("\n")

	if line := s.dictationLine(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Label.Render("Reference answer"))
	b.WriteString("\n")
	if rec.Reveal.AnswerVisible {
		b.WriteString(theme.Body.Width(inner).Render(rec.ReferenceAnswer))
	} else {
		b.WriteString(theme.Hint.Render("Hidden. Press a to reveal."))
	}
	b.WriteString("\n")

	if fb := s.renderFeedback(rec, inner); fb != "" {
		b.WriteString("\n")
		b.WriteString(fb)
	}

	style := theme.Card
	if st.Phase == navigation.Dragging || s.mode == modeEdit {
		style = theme.CardActive
	}
	card := style.Width(cw).Render(b.String())

	margin := (width-cw)/2 + int(st.DragOffset)
	if margin < 0 {
		margin = 0
	}
	if margin > width-cw {
		margin = max(0, width-cw)
	}
	return lipgloss.NewStyle().MarginLeft(margin).Render(card)
}

func (s *Screen) renderFeedback(rec stream.Record, inner int) string {
	if rec.EvaluationInFlight {
		return theme.Notice.Render(s.spinnerFrame() + " Evaluating your answer...")
	}
	if rec.Feedback == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Label.Render("Feedback"))
	b.WriteString("\n")
	if rec.EvaluationFailed {
		b.WriteString(theme.Bad.Width(inner).Render(rec.Feedback.Short))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press e to try again."))
		return b.String()
	}
	b.WriteString(theme.Good.Width(inner).Render(rec.Feedback.Short))
	if rec.Feedback.Detailed == "" {
		return b.String()
	}
	b.WriteString("\n\n")
	if rec.Reveal.DetailedFeedbackVisible {
		b.WriteString(theme.Body.Width(inner).Render(rec.Feedback.Detailed))
	} else {
		b.WriteString(theme.Hint.Render("Press d for detailed feedback."))
	}
	return b.String()
}

func (s *Screen) dictationLine() string {
	c := s.sess.Capture
	switch {
	case c.Err() != nil:
		return theme.Bad.Render("✗ " + c.Err().Message())
	case c.Listening():
		line := "● Listening..."
		if t := strings.TrimSpace(c.Transcript()); t != "" {
			line += " " + t
		}
		return theme.Notice.Render(line)
	}
	return ""
}

// renderStatus shows loading, end-of-queue and failure notices under the
// card.
func (s *Screen) renderStatus(width int) string {
	var lines []string
	if s.sess.Nav.Loading() && s.sess.Stream.Fetch().InFlight {
		lines = append(lines, theme.Hint.Render(s.spinnerFrame()+" Loading more questions..."))
	}
	if s.notice != "" {
		lines = append(lines, theme.Notice.Render(s.notice))
	} else if s.sess.Nav.AtEnd() {
		lines = append(lines, theme.Hint.Render("You've reached the end of the question stream."))
	}
	if s.preloadErr != "" {
		lines = append(lines, theme.Bad.Render(s.preloadErr)+theme.Hint.Render("  (x to dismiss)"))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func (s *Screen) renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Finish this session?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Your answers will be summarized and can be exported."))
	b.WriteString("\n\n")

	row := components.ButtonRow([]string{"Finish", "Keep reviewing"}, s.quitSel)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
	return b.String()
}

func (s *Screen) spinnerFrame() string {
	return spinnerFrames[s.spinner%len(spinnerFrames)]
}
