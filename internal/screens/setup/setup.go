// Package setup is the first screen: pick a topic and a level, then wait for
// the first batch of questions.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/router"
	"github.com/abhisek/intervu/internal/screen"
	"github.com/abhisek/intervu/internal/screens/review"
	"github.com/abhisek/intervu/internal/screens/summary"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/store"
	"github.com/abhisek/intervu/internal/stream"
	"github.com/abhisek/intervu/internal/ui/components"
	"github.com/abhisek/intervu/internal/ui/layout"
	"github.com/abhisek/intervu/internal/ui/theme"
)

const (
	topicMenuID      = "topic"
	difficultyMenuID = "difficulty"
	customValue      = "__custom__"

	maxTopicLen  = 60
	startTimeout = 2 * time.Minute
	keepPrefs    = 5
)

// Defaults preselect choices, typically from command line flags. They win
// over remembered preferences.
type Defaults struct {
	Topic      string
	Difficulty questiongen.Difficulty
	BatchSize  int
}

// Deps are everything needed to start and run sessions from this screen.
type Deps struct {
	Session  session.Deps
	Prefs    store.SnapshotRepo
	Recorder *session.Recorder
	Summary  summary.Options
	Defaults Defaults
}

type stage int

const (
	stageTopic stage = iota
	stageCustom
	stageDifficulty
	stageLoading
)

type prefsLoadedMsg struct {
	Snapshot *store.Snapshot
}

type startedMsg struct {
	sess   *session.Session
	Result stream.BatchResult
}

type prefsSavedMsg struct {
	Err error
}

// Screen collects the session configuration.
type Screen struct {
	deps Deps

	stage     stage
	topics    components.Menu
	custom    components.TextInput
	levels    components.Menu
	topic     string
	batchSize int
	pending   *session.Session
	errMsg    string
	width     int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.EscapeInterceptor = (*Screen)(nil)

// New creates the setup screen.
func New(deps Deps) *Screen {
	items := make([]components.MenuItem, 0, len(questiongen.Topics)+1)
	for _, t := range questiongen.Topics {
		items = append(items, components.MenuItem{Label: t, Value: t})
	}
	items = append(items, components.MenuItem{Label: "Custom topic...", Value: customValue})

	levels := make([]components.MenuItem, 0, len(questiongen.Difficulties))
	for _, d := range questiongen.Difficulties {
		levels = append(levels, components.MenuItem{Label: d.Label(), Value: string(d)})
	}

	s := &Screen{
		deps:      deps,
		topics:    components.NewMenu(topicMenuID, items),
		custom:    components.NewTextInput("e.g. Kubernetes, Go concurrency", maxTopicLen),
		levels:    components.NewMenu(difficultyMenuID, levels),
		batchSize: deps.Defaults.BatchSize,
	}
	s.levels.Select(string(questiongen.DefaultDifficulty))
	s.applyPrefs(deps.Defaults.Topic, deps.Defaults.Difficulty)
	return s
}

// Init loads remembered preferences. It also runs when the app returns here
// after a finished session.
func (s *Screen) Init() tea.Cmd {
	s.stage = stageTopic
	s.pending = nil
	repo := s.deps.Prefs
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := repo.Latest(context.Background())
		if err != nil {
			log.Printf("warning: loading preferences: %v", err)
			return prefsLoadedMsg{}
		}
		return prefsLoadedMsg{Snapshot: snap}
	}
}

func (s *Screen) Title() string {
	return "New Session"
}

// InterceptsEscape keeps esc for stepping back through the form.
func (s *Screen) InterceptsEscape() bool { return s.stage != stageTopic }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.stage {
	case stageCustom:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Back"},
		}
	case stageDifficulty:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case stageLoading:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil

	case prefsLoadedMsg:
		if msg.Snapshot != nil {
			d, _ := questiongen.ParseDifficulty(msg.Snapshot.Data.Difficulty)
			// Flags were applied in New and take precedence.
			topic := msg.Snapshot.Data.Topic
			if s.deps.Defaults.Topic != "" {
				topic = s.deps.Defaults.Topic
			}
			if s.deps.Defaults.Difficulty != "" {
				d = s.deps.Defaults.Difficulty
			}
			s.applyPrefs(topic, d)
			if s.batchSize == 0 {
				s.batchSize = msg.Snapshot.Data.BatchSize
			}
		}
		return s, nil

	case prefsSavedMsg:
		if msg.Err != nil {
			log.Printf("warning: saving preferences: %v", msg.Err)
		}
		return s, nil

	case startedMsg:
		return s.handleStarted(msg)

	case components.MenuSelectedMsg:
		return s.handleSelected(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	var cmd tea.Cmd

	switch s.stage {
	case stageTopic:
		s.errMsg = ""
		s.topics, cmd = s.topics.Update(msg)

	case stageCustom:
		switch key {
		case "esc":
			s.stage = stageTopic
		case "enter":
			topic := s.custom.Value()
			switch {
			case topic == "":
				s.custom.SetError("enter a topic")
			case len([]rune(topic)) > maxTopicLen:
				s.custom.SetError(fmt.Sprintf("keep it under %d characters", maxTopicLen))
			default:
				s.topic = topic
				s.stage = stageDifficulty
			}
		default:
			s.custom, cmd = s.custom.Update(msg)
		}

	case stageDifficulty:
		if key == "esc" {
			s.stage = stageTopic
			if item, ok := s.topics.Current(); ok && item.Value == customValue {
				s.stage = stageCustom
			}
			return s, nil
		}
		s.errMsg = ""
		s.levels, cmd = s.levels.Update(msg)

	case stageLoading:
		if key == "esc" {
			// The fetch keeps running; its result is ignored.
			s.pending = nil
			s.stage = stageDifficulty
		}
	}
	return s, cmd
}

func (s *Screen) handleSelected(msg components.MenuSelectedMsg) (screen.Screen, tea.Cmd) {
	switch msg.MenuID {
	case topicMenuID:
		if msg.Item.Value == customValue {
			s.stage = stageCustom
			return s, s.custom.Init()
		}
		s.topic = msg.Item.Value
		s.stage = stageDifficulty
	case difficultyMenuID:
		return s, s.start(questiongen.Difficulty(msg.Item.Value))
	}
	return s, nil
}

// start creates the session and issues its first fetch.
func (s *Screen) start(d questiongen.Difficulty) tea.Cmd {
	cfg := stream.Config{Topic: s.topic, Difficulty: d, BatchSize: s.batchSize}
	sess := session.New(cfg, s.deps.Session)
	f := sess.Start()
	fetcher := sess.Fetcher()

	s.pending = sess
	s.stage = stageLoading
	s.errMsg = ""
	return func() tea.Msg {
		ctx, cancel := sess.Context(startTimeout)
		defer cancel()
		return startedMsg{sess: sess, Result: f.Run(ctx, fetcher)}
	}
}

func (s *Screen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.sess != s.pending {
		return s, nil
	}
	s.pending = nil

	if err := msg.sess.Begin(msg.Result); err != nil {
		if errors.Is(err, stream.ErrStale) {
			return s, nil
		}
		s.stage = stageDifficulty
		s.errMsg = describeStartError(err)
		return s, nil
	}

	next := review.New(msg.sess, review.Options{
		Recorder: s.deps.Recorder,
		Summary:  s.deps.Summary,
		Width:    s.width,
		Now:      s.deps.Session.Now,
	})
	return s, tea.Batch(
		s.savePrefs(msg.sess.Config),
		func() tea.Msg { return router.PushScreenMsg{Screen: next} },
	)
}

func describeStartError(err error) string {
	if errors.Is(err, stream.ErrNoQuestions) {
		return "No questions were returned for this topic. Try another topic or level."
	}
	return fmt.Sprintf("Could not start the session: %v", err)
}

func (s *Screen) savePrefs(cfg stream.Config) tea.Cmd {
	repo := s.deps.Prefs
	if repo == nil {
		return nil
	}
	snap := &store.Snapshot{
		Timestamp: time.Now(),
		Data: store.SnapshotData{
			Version:    1,
			Topic:      cfg.Topic,
			Difficulty: string(cfg.Difficulty),
			BatchSize:  s.deps.Defaults.BatchSize,
		},
	}
	return func() tea.Msg {
		ctx := context.Background()
		if err := repo.Save(ctx, snap); err != nil {
			return prefsSavedMsg{Err: err}
		}
		return prefsSavedMsg{Err: repo.Prune(ctx, keepPrefs)}
	}
}

// applyPrefs moves the menus to a remembered or requested topic and level.
// Unknown topics become the custom topic.
func (s *Screen) applyPrefs(topic string, d questiongen.Difficulty) {
	if topic = strings.TrimSpace(topic); topic != "" {
		if !s.topics.Select(topic) {
			s.topics.Select(customValue)
			s.custom.SetValue(topic)
		}
		s.topic = topic
	}
	if d != "" {
		s.levels.Select(string(d))
	}
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Interview practice"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Questions stream in as you go. Answer by typing or dictation."))
	b.WriteString("\n\n")

	var body string
	switch s.stage {
	case stageTopic:
		body = theme.Label.Render("Choose a topic") + "\n\n" + s.topics.View(true)
	case stageCustom:
		body = theme.Label.Render("Custom topic") + "\n\n" + s.custom.View()
	case stageDifficulty:
		body = theme.Label.Render("Topic: ") + theme.Body.Render(s.topic) + "\n\n" +
			theme.Label.Render("Choose a level") + "\n\n" + s.levels.View(true)
	case stageLoading:
		body = theme.Hint.Render(fmt.Sprintf("Preparing %s questions (%s)...", s.topic, s.currentLevel()))
	}

	box := lipgloss.NewStyle().Width(min(width-8, 60)).Render(body)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, box))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}
	return b.String()
}

func (s *Screen) currentLevel() string {
	if item, ok := s.levels.Current(); ok {
		return item.Value
	}
	return string(questiongen.DefaultDifficulty)
}
