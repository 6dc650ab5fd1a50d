package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/router"
	"github.com/abhisek/intervu/internal/screen"
	"github.com/abhisek/intervu/internal/store"
	"github.com/abhisek/intervu/internal/ui/layout"
	"github.com/abhisek/intervu/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummaryRecord
	Answers  map[string][]store.AnswerEventRecord // sessionID → answers
	Err      error
}

// HistoryScreen displays past sessions and their evaluated answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummaryRecord
	answers   map[string][]store.AnswerEventRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return load(context.Background(), s.eventRepo, 50)
	}
}

// load reads the latest limit finished sessions and their answers.
func load(ctx context.Context, repo store.EventRepo, limit int) historyLoadedMsg {
	sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit})
	if err != nil {
		return historyLoadedMsg{Err: err}
	}

	answers := make(map[string][]store.AnswerEventRecord, len(sessions))
	for _, sess := range sessions {
		recs, err := repo.QueryAnswers(ctx, store.QueryOpts{SessionID: sess.SessionID})
		if err != nil {
			// Answers are optional detail; keep the session list.
			continue
		}
		answers[sess.SessionID] = recs
	}
	return historyLoadedMsg{Sessions: sessions, Answers: answers}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.answers = msg.Answers
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Finish a review to see it here.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+SessionLine(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			answers := s.answers[sess.SessionID]
			if len(answers) == 0 {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
						Render("    No evaluated answers")))
				b.WriteString("\n")
				continue
			}
			for _, a := range answers {
				line := fmt.Sprintf("    %s\n      %s", oneLine(a.QuestionText, 70), oneLine(a.ShortFeedback, 68))
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// SessionLine formats one finished session for lists.
func SessionLine(sess store.SessionSummaryRecord) string {
	mins := sess.DurationSecs / 60
	secs := sess.DurationSecs % 60
	return fmt.Sprintf("%s  %-24s %-6s  %d:%02d  %d seen  %d answered  %d evaluated",
		sess.Timestamp.Local().Format("Jan 02, 2006"), oneLine(sess.Topic, 24), sess.Difficulty,
		mins, secs, sess.QuestionsServed, sess.QuestionsAnswered, sess.QuestionsEvaluated)
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
