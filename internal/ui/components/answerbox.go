package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// AnswerBox is the multi-line answer editor on a question card.
type AnswerBox struct {
	Model textarea.Model
}

// NewAnswerBox creates a blurred editor.
func NewAnswerBox() AnswerBox {
	ta := textarea.New()
	ta.Placeholder = "Type your answer, or press ctrl+s to dictate..."
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.SetHeight(6)
	return AnswerBox{Model: ta}
}

// Load replaces the content without moving focus.
func (a *AnswerBox) Load(text string) {
	a.Model.SetValue(text)
	a.Model.CursorEnd()
}

// Value returns the raw text. Whitespace is kept so that later dictation
// appends line up with what was typed.
func (a AnswerBox) Value() string {
	return a.Model.Value()
}

// Focus starts editing.
func (a *AnswerBox) Focus() tea.Cmd {
	return a.Model.Focus()
}

// Blur stops editing.
func (a *AnswerBox) Blur() {
	a.Model.Blur()
}

// SetWidth sizes the editor.
func (a *AnswerBox) SetWidth(w int) {
	if w < 10 {
		w = 10
	}
	a.Model.SetWidth(w)
}

// Update forwards a message to the editor.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the editor.
func (a AnswerBox) View() string {
	return a.Model.View()
}
