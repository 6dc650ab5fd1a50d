// Package review is the question review screen. It wires one
// session.Session to terminal input: keys and mouse drags drive navigation,
// the answer box and dictation feed the capture bridge, and outbound calls
// run as commands whose results come back as messages.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervu/internal/capture"
	"github.com/abhisek/intervu/internal/navigation"
	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/router"
	"github.com/abhisek/intervu/internal/screen"
	"github.com/abhisek/intervu/internal/screens/summary"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/stream"
	"github.com/abhisek/intervu/internal/ui/components"
	"github.com/abhisek/intervu/internal/ui/layout"
)

const (
	fetchTimeout      = 2 * time.Minute
	evaluationTimeout = 90 * time.Second
	spinnerInterval   = 120 * time.Millisecond
)

type mode int

const (
	modeCard mode = iota
	modeEdit
	modeConfirmQuit
)

// Options are the screen's collaborators beyond the session.
type Options struct {
	// Recorder appends session events. Nil disables recording.
	Recorder *session.Recorder

	// Summary configures the results screen shown on finish.
	Summary summary.Options

	// Width is the terminal width known when the screen is created.
	Width int

	// Now is the clock used for gesture samples, time.Now if nil.
	Now func() time.Time
}

// Screen is the review surface for one started session.
type Screen struct {
	sess *session.Session
	opts Options

	answer  components.AnswerBox
	mode    mode
	quitSel int

	dragging bool
	width    int
	spinner  int
	spinning bool

	notice     string
	preloadErr string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.EscapeInterceptor = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates the screen. The session must have been started.
func New(sess *session.Session, opts Options) *Screen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Screen{
		sess:   sess,
		opts:   opts,
		answer: components.NewAnswerBox(),
	}
	s.resize(opts.Width)
	s.answer.Load(sess.Capture.Text())
	return s
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.record("session start", func(ctx context.Context) error {
		return s.opts.Recorder.Start(ctx, s.sess)
	}), s.spin())
}

func (s *Screen) Title() string {
	return "Review"
}

// Status shows topic, level and a dictation marker in the header.
func (s *Screen) Status() string {
	st := fmt.Sprintf("%s · %s", s.sess.Config.Topic, s.sess.Config.Difficulty)
	if s.sess.Capture.Listening() {
		st = "● REC  " + st
	}
	return st
}

// InterceptsEscape is always true: esc leaves edit mode or asks to quit.
func (s *Screen) InterceptsEscape() bool { return true }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeConfirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish"},
			{Key: "N", Description: "Keep reviewing"},
		}
	case modeEdit:
		return []layout.KeyHint{
			{Key: "Esc/Tab", Description: "Done"},
			{Key: "Ctrl+S", Description: "Dictate"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
		{Key: "Enter", Description: "Answer"},
		{Key: "S", Description: "Dictate"},
		{Key: "E", Description: "Evaluate"},
		{Key: "A", Description: "Reference"},
		{Key: "D", Description: "Details"},
		{Key: "F", Description: "Finish"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width)
		return s, nil

	case settleMsg:
		s.syncEdit()
		return s, s.apply(s.sess.Settle(msg.Token))

	case moreLoadedMsg:
		return s.handleMore(msg)

	case evaluatedMsg:
		return s.handleEvaluated(msg)

	case dictationMsg:
		return s.handleDictation(msg)

	case spinnerTickMsg:
		s.spinning = false
		s.spinner++
		return s, s.spin()

	case recordedMsg:
		if msg.Err != nil {
			log.Printf("warning: recording %s: %v", msg.What, msg.Err)
		}
		return s, nil

	case tea.MouseClickMsg:
		m := msg.Mouse()
		if m.Button != tea.MouseLeft || s.mode == modeConfirmQuit {
			return s, nil
		}
		s.sess.Nav.GestureStart(float64(m.X), s.opts.Now())
		s.dragging = s.sess.Nav.State().Phase == navigation.Dragging
		return s, nil

	case tea.MouseMotionMsg:
		if s.dragging {
			s.sess.Nav.GestureMove(float64(msg.Mouse().X), s.opts.Now())
		}
		return s, nil

	case tea.MouseReleaseMsg:
		if !s.dragging {
			return s, nil
		}
		s.dragging = false
		s.syncEdit()
		return s, s.apply(s.sess.Handle(s.sess.Nav.GestureEnd(float64(msg.Mouse().X), s.opts.Now())))

	case tea.KeyMsg:
		switch s.mode {
		case modeConfirmQuit:
			return s.handleQuitKey(msg)
		case modeEdit:
			return s.handleEditKey(msg)
		}
		return s.handleCardKey(msg)
	}

	// Paste and other non-key input still edit the answer.
	if s.mode == modeEdit {
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		s.syncEdit()
		return s, cmd
	}
	return s, nil
}

// syncEdit hands the editor content to the capture bridge so that a move
// or a dictation delta starts from what is on screen.
func (s *Screen) syncEdit() {
	if s.mode == modeEdit {
		s.sess.Capture.Edit(s.answer.Value())
	}
}

func (s *Screen) handleCardKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return s, s.apply(s.sess.Handle(s.sess.Nav.GoPrevious()))
	case "right", "l":
		return s, s.apply(s.sess.Handle(s.sess.Nav.GoNext()))
	case "enter", "i":
		if _, ok := s.sess.Active(); !ok {
			return s, nil
		}
		s.mode = modeEdit
		s.answer.Load(s.sess.Capture.Text())
		return s, s.answer.Focus()
	case "a":
		s.sess.ToggleReveal(false)
	case "d":
		s.sess.ToggleReveal(true)
	case "e":
		return s, s.evaluate()
	case "s":
		return s, s.toggleDictation()
	case "x":
		s.preloadErr = ""
		s.sess.Capture.ClearErr()
	case "f":
		return s, s.finish()
	case "esc":
		s.mode = modeConfirmQuit
		s.quitSel = 1
	}
	return s, nil
}

func (s *Screen) handleEditKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		s.leaveEdit()
		return s, nil
	case "ctrl+s":
		s.sess.Capture.Edit(s.answer.Value())
		return s, s.toggleDictation()
	}

	var cmd tea.Cmd
	s.answer, cmd = s.answer.Update(msg)
	s.sess.Capture.Edit(s.answer.Value())
	return s, cmd
}

func (s *Screen) handleQuitKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		s.mode = modeCard
		return s, s.finish()
	case "n", "N", "esc":
		s.mode = modeCard
	case "left", "h":
		s.quitSel = 0
	case "right", "l":
		s.quitSel = 1
	case "enter":
		s.mode = modeCard
		if s.quitSel == 0 {
			return s, s.finish()
		}
	}
	return s, nil
}

func (s *Screen) leaveEdit() {
	s.sess.Capture.Edit(s.answer.Value())
	s.sess.Capture.Commit()
	s.answer.Blur()
	s.mode = modeCard
}

// apply turns session effects into commands and screen state.
func (s *Screen) apply(fx session.Effects) tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range fx.Settles {
		token := ev.Token
		cmds = append(cmds, tea.Tick(ev.Delay, func(time.Time) tea.Msg {
			return settleMsg{Token: token}
		}))
	}
	if fx.Fetch != nil {
		cmds = append(cmds, s.fetchMore(fx.Fetch))
	}
	if fx.Moved {
		if s.mode == modeEdit {
			s.answer.Blur()
			s.mode = modeCard
		}
		s.answer.Load(s.sess.Capture.Text())
		s.notice = ""
	}
	if fx.Exhausted {
		s.notice = "That was the last question. Press f to see your results."
	}
	if fx.AwaitingMore || s.sess.Nav.Loading() {
		cmds = append(cmds, s.spin())
	}
	return tea.Batch(cmds...)
}

func (s *Screen) fetchMore(f *stream.Fetch) tea.Cmd {
	sess := s.sess
	fetcher := sess.Fetcher()
	return func() tea.Msg {
		ctx, cancel := sess.Context(fetchTimeout)
		defer cancel()
		return moreLoadedMsg{Result: f.Run(ctx, fetcher)}
	}
}

func (s *Screen) handleMore(msg moreLoadedMsg) (screen.Screen, tea.Cmd) {
	out := s.sess.ApplyMore(msg.Result)
	if out.Stale {
		return s, nil
	}
	if out.Err != nil {
		s.preloadErr = out.Err.Error()
	}
	if out.Appended > 0 && s.mode != modeEdit {
		s.answer.Load(s.sess.Capture.Text())
	}
	return s, nil
}

func (s *Screen) evaluate() tea.Cmd {
	rec, ok := s.sess.Active()
	if !ok {
		return nil
	}
	ev, err := s.sess.BeginEvaluation(rec.ID)
	switch {
	case errors.Is(err, questiongen.ErrBlankAnswer):
		s.notice = "Write or dictate an answer before evaluating."
		return nil
	case errors.Is(err, session.ErrEvaluationPending):
		return nil
	case errors.Is(err, session.ErrNoEvaluator):
		s.notice = "Evaluation needs an LLM provider. Set an API key such as GEMINI_API_KEY."
		return nil
	case err != nil:
		s.notice = err.Error()
		return nil
	}
	s.notice = ""
	evaluator := s.sess.Evaluator()
	return tea.Batch(s.spin(), func() tea.Msg {
		ctx, cancel := s.sess.Context(evaluationTimeout)
		defer cancel()
		return evaluatedMsg{Result: ev.Run(ctx, evaluator)}
	})
}

func (s *Screen) handleEvaluated(msg evaluatedMsg) (screen.Screen, tea.Cmd) {
	rec, ok := s.sess.ApplyEvaluation(msg.Result)
	if !ok || rec.EvaluationFailed {
		return s, nil
	}
	return s, s.record("answer", func(ctx context.Context) error {
		return s.opts.Recorder.Answer(ctx, s.sess, rec)
	})
}

func (s *Screen) toggleDictation() tea.Cmd {
	id := s.sess.Capture.ActiveID()
	if id == "" {
		return nil
	}
	if s.sess.Capture.Listening() {
		s.sess.Capture.StopDictation(id)
		return nil
	}
	run, err := s.sess.Capture.StartDictation(context.Background(), id)
	if err != nil || run == nil {
		// The bridge keeps the error for display.
		return nil
	}
	return listen(run)
}

func listen(run *capture.Run) tea.Cmd {
	return func() tea.Msg {
		return dictationMsg{run: run, DictationMsg: run.Next()}
	}
}

func (s *Screen) handleDictation(msg dictationMsg) (screen.Screen, tea.Cmd) {
	s.syncEdit()
	if s.sess.Capture.HandleDictation(msg.DictationMsg) {
		s.answer.Load(s.sess.Capture.Text())
	}
	if msg.Closed {
		return s, nil
	}
	return s, listen(msg.run)
}

// finish leaves review for the results screen.
func (s *Screen) finish() tea.Cmd {
	if s.mode == modeEdit {
		s.leaveEdit()
	}
	s.sess.Finish()
	sum := s.sess.BuildSummary()
	s.sess.Discard()
	next := summary.New(sum, s.opts.Summary)
	return tea.Batch(
		s.record("session end", func(ctx context.Context) error {
			return s.opts.Recorder.End(ctx, s.sess, sum)
		}),
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} },
	)
}

func (s *Screen) record(what string, fn func(ctx context.Context) error) tea.Cmd {
	if s.opts.Recorder == nil {
		return nil
	}
	return func() tea.Msg {
		return recordedMsg{What: what, Err: fn(context.Background())}
	}
}

// spin schedules the next spinner frame while something is loading.
func (s *Screen) spin() tea.Cmd {
	if s.spinning || !s.busy() {
		return nil
	}
	s.spinning = true
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (s *Screen) busy() bool {
	if s.sess.Stream.Fetch().InFlight && s.sess.Nav.Loading() {
		return true
	}
	rec, ok := s.sess.Active()
	return ok && rec.EvaluationInFlight
}

func (s *Screen) resize(width int) {
	if width <= 0 {
		return
	}
	s.width = width
	s.sess.Nav.SetViewport(width)
	s.answer.SetWidth(cardWidth(width) - 8)
}
