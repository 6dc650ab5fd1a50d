package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervu/internal/ui/layout"
)

// Screen is one page of the application, stacked by the router.
type Screen interface {
	// Init returns the command to run when the screen becomes active.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen body between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeInterceptor is implemented by screens that handle esc themselves,
// for example to leave an edit mode or confirm quitting. While it reports
// true the app does not pop the screen on esc.
type EscapeInterceptor interface {
	InterceptsEscape() bool
}

// StatusProvider supplies the right-hand header text.
type StatusProvider interface {
	Status() string
}
