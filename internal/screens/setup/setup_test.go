package setup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/router"
	"github.com/abhisek/intervu/internal/screens/review"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/store"
)

type recordingFetcher struct {
	reqs  []questiongen.BatchRequest
	items []questiongen.Item
	err   error
}

func (f *recordingFetcher) FetchBatch(_ context.Context, req questiongen.BatchRequest) ([]questiongen.Item, error) {
	f.reqs = append(f.reqs, req)
	return f.items, f.err
}

func oneItem() []questiongen.Item {
	return []questiongen.Item{{Prompt: "What is a goroutine?", ReferenceAnswer: "A lightweight thread."}}
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }
func down() tea.KeyPressMsg  { return tea.KeyPressMsg{Code: tea.KeyDown} }
func esc() tea.KeyPressMsg   { return tea.KeyPressMsg{Code: tea.KeyEscape} }

// send delivers msg and follows the screen's own commands. It returns the
// first router message produced, if any.
func send(t *testing.T, s *Screen, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := s.Update(msg)
	for range 10 {
		if cmd == nil {
			return nil
		}
		next := cmd()
		switch m := next.(type) {
		case tea.BatchMsg:
			var routed tea.Msg
			for _, c := range m {
				if c == nil {
					continue
				}
				out := c()
				if _, ok := out.(router.PushScreenMsg); ok {
					routed = out
					continue
				}
				s.Update(out)
			}
			return routed
		case router.PushScreenMsg:
			return m
		}
		_, cmd = s.Update(next)
	}
	t.Fatal("command chain did not finish")
	return nil
}

func TestSetup_StartsSession(t *testing.T) {
	f := &recordingFetcher{items: oneItem()}
	s := New(Deps{Session: session.Deps{Fetcher: f}})

	// Java is first; Middle is preselected.
	assert.Nil(t, send(t, s, enter()))
	assert.Equal(t, stageDifficulty, s.stage)
	assert.Equal(t, "Java", s.topic)

	msg := send(t, s, enter())
	push, ok := msg.(router.PushScreenMsg)
	require.True(t, ok, "expected the review screen to be pushed")
	_, ok = push.Screen.(*review.Screen)
	assert.True(t, ok)

	require.Len(t, f.reqs, 1)
	assert.Equal(t, "Java", f.reqs[0].Topic)
	assert.Equal(t, questiongen.Middle, f.reqs[0].Difficulty)
	assert.Equal(t, questiongen.DefaultBatchSize, f.reqs[0].Size)
}

func TestSetup_CustomTopic(t *testing.T) {
	s := New(Deps{Session: session.Deps{Fetcher: &recordingFetcher{items: oneItem()}}})

	for range len(questiongen.Topics) {
		s.Update(down())
	}
	send(t, s, enter())
	require.Equal(t, stageCustom, s.stage)

	s.Update(enter())
	assert.Equal(t, stageCustom, s.stage, "empty topic is refused")
	assert.Contains(t, s.custom.View(), "enter a topic")

	for _, r := range "Go concurrency" {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	s.Update(enter())
	assert.Equal(t, stageDifficulty, s.stage)
	assert.Equal(t, "Go concurrency", s.topic)

	s.Update(esc())
	assert.Equal(t, stageCustom, s.stage, "esc steps back to the custom topic")
}

func TestSetup_InitialFailureShown(t *testing.T) {
	f := &recordingFetcher{err: errors.New("no API key")}
	s := New(Deps{Session: session.Deps{Fetcher: f}})

	send(t, s, enter())
	assert.Nil(t, send(t, s, enter()))

	assert.Equal(t, stageDifficulty, s.stage)
	assert.Contains(t, s.errMsg, "no API key")
	assert.Contains(t, s.View(80, 30), "no API key")
}

func TestSetup_EmptyFirstBatch(t *testing.T) {
	s := New(Deps{Session: session.Deps{Fetcher: &recordingFetcher{}}})

	send(t, s, enter())
	send(t, s, enter())
	assert.Contains(t, s.errMsg, "No questions were returned")
}

func TestSetup_CancelIgnoresLateResult(t *testing.T) {
	s := New(Deps{Session: session.Deps{Fetcher: &recordingFetcher{items: oneItem()}}})
	send(t, s, enter())

	_, cmd := s.Update(enter())
	require.NotNil(t, cmd)
	sel := cmd()
	_, cmd = s.Update(sel)
	require.Equal(t, stageLoading, s.stage)
	require.True(t, s.InterceptsEscape())

	s.Update(esc())
	assert.Equal(t, stageDifficulty, s.stage)

	_, next := s.Update(cmd())
	assert.Nil(t, next, "a cancelled start pushes nothing")
}

func TestSetup_RemembersPreferences(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	deps := Deps{
		Session: session.Deps{Fetcher: &recordingFetcher{items: oneItem()}},
		Prefs:   st.SnapshotRepo(),
	}
	s := New(deps)
	s.Update(down())
	s.Update(down())
	send(t, s, enter())
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	require.NotNil(t, send(t, s, enter()))

	snap, err := st.SnapshotRepo().Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "JavaScript", snap.Data.Topic)
	assert.Equal(t, "Junior", snap.Data.Difficulty)

	again := New(deps)
	again.Update(again.Init()())
	item, _ := again.topics.Current()
	assert.Equal(t, "JavaScript", item.Value)
	level, _ := again.levels.Current()
	assert.Equal(t, "Junior", level.Value)
}

func TestSetup_DefaultsWin(t *testing.T) {
	s := New(Deps{Defaults: Defaults{Topic: "Rust", Difficulty: questiongen.Senior}})

	item, _ := s.topics.Current()
	assert.Equal(t, customValue, item.Value)
	assert.Equal(t, "Rust", s.custom.Value())
	level, _ := s.levels.Current()
	assert.Equal(t, "Senior", level.Value)
}
