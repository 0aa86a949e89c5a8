package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that are currently typing into a
// field. The app skips its global single-key shortcuts while it returns true.
type InputCapturer interface {
	CapturingInput() bool
}

// StateMsg carries the orchestrator state after an operation completes.
type StateMsg struct {
	State orchestrator.Snapshot
	Err   error
}

// Env is what a screen needs to drive the orchestrator.
type Env struct {
	Ctx  context.Context
	Orch *orchestrator.Orchestrator
	Log  *logger.Logger
}

// Do runs fn off the UI goroutine and reports the resulting state.
func (e Env) Do(fn func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := fn(e.Ctx, e.Orch)
		if err != nil {
			e.Log.Debug("ui action failed", "error", err)
		}
		return StateMsg{State: s, Err: err}
	}
}

// Sync is Do for operations that cannot fail.
func (e Env) Sync(fn func(o *orchestrator.Orchestrator) orchestrator.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return StateMsg{State: fn(e.Orch)}
	}
}
