package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and Notepilot styling.
type TextInput struct {
	Label string
	Model textinput.Model
}

// NewTextInput creates a new styled text input. A positive limit caps the
// number of characters.
func NewTextInput(label, placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Label: label, Model: ti}
}

// NewSecretInput creates an input that masks what is typed.
func NewSecretInput(label, placeholder string) TextInput {
	t := NewTextInput(label, placeholder, 0)
	t.Model.EchoMode = textinput.EchoPassword
	return t
}

// Update handles messages. Unfocused inputs ignore key presses.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the input.
func (t TextInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Model.Focused() {
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	if t.Label == "" {
		return t.Model.View()
	}
	return label.Render(t.Label) + "\n" + t.Model.View()
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has keyboard focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
