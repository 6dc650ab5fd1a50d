package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervu/internal/screens/setup"
)

func sized(w, h int) AppModel {
	m := newAppModel(Options{Setup: setup.Deps{}})
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(AppModel)
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := sized(100, 30)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestAppModel_EscAtRootIsIgnored(t *testing.T) {
	m := sized(100, 30)
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the root screen produced a command")
	}
}

func TestAppModel_View(t *testing.T) {
	m := sized(100, 30)
	if m.width != 100 {
		t.Errorf("width = %d, want 100", m.width)
	}
	if got := m.router.Active().Title(); got != "New Session" {
		t.Errorf("active screen = %q, want New Session", got)
	}

	v := m.View()
	if !v.AltScreen {
		t.Error("expected the alt screen")
	}
	if v.MouseMode != tea.MouseModeCellMotion {
		t.Errorf("MouseMode = %v, want cell motion", v.MouseMode)
	}
}
