// Package auth is the sign-in form.
package auth

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/ui/components"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

const (
	fieldName = iota
	fieldEmail
	fieldCount
)

// AuthScreen collects a display name and an email.
type AuthScreen struct {
	env     screen.Env
	fields  [fieldCount]components.TextInput
	focus   int
	pending bool
	errMsg  string
}

var _ screen.Screen = (*AuthScreen)(nil)
var _ screen.KeyHintProvider = (*AuthScreen)(nil)
var _ screen.InputCapturer = (*AuthScreen)(nil)

// New creates an AuthScreen with the name field focused.
func New(env screen.Env) *AuthScreen {
	s := &AuthScreen{env: env}
	s.fields[fieldName] = components.NewTextInput("Name", "Your name", 60)
	s.fields[fieldEmail] = components.NewTextInput("Email", "you@example.com", 120)
	return s
}

func (s *AuthScreen) Init() tea.Cmd {
	return s.fields[s.focus].Focus()
}

func (s *AuthScreen) Title() string {
	return "Sign in"
}

func (s *AuthScreen) CapturingInput() bool {
	return true
}

func (s *AuthScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Continue"},
	}
}

func (s *AuthScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.pending = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if s.focus == fieldName {
				return s, s.setFocus(fieldEmail)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *AuthScreen) setFocus(i int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = i
	return s.fields[i].Focus()
}

func (s *AuthScreen) submit() tea.Cmd {
	if s.pending {
		return nil
	}
	name := s.fields[fieldName].Value()
	email := strings.TrimSpace(s.fields[fieldEmail].Value())
	if email == "" {
		s.errMsg = "Email is required."
		return nil
	}
	s.errMsg = ""
	s.pending = true
	return s.env.Do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return o.Login(ctx, name, email)
	})
}

func (s *AuthScreen) View(width, height int) string {
	formWidth := min(width-4, 56)

	var b strings.Builder
	b.WriteString(theme.Title.Width(formWidth).Render("Welcome to Notepilot"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(formWidth).Render("Sign in to keep your study packs on this device."))
	b.WriteString("\n\n")

	for i := range s.fields {
		b.WriteString(s.fields[i].View())
		b.WriteString("\n\n")
	}

	switch {
	case s.pending:
		b.WriteString(theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		b.WriteString(theme.Banner.Width(formWidth).Render(s.errMsg))
	default:
		b.WriteString(theme.Hint.Render("Your email is only used to keep your packs separate."))
	}

	card := theme.Card.Width(formWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
