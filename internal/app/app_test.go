package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/screens/auth"
	"github.com/abhisek/notepilot/internal/screens/create"
	"github.com/abhisek/notepilot/internal/screens/landing"
	"github.com/abhisek/notepilot/internal/screens/screentest"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/layout"
)

func TestStartsOnLanding(t *testing.T) {
	env := screentest.New(t)
	m := newAppModel(env.Env)
	if _, ok := m.router.Active().(*landing.LandingScreen); !ok {
		t.Fatalf("expected landing screen, got %T", m.router.Active())
	}
}

func TestViewChangeReplacesScreen(t *testing.T) {
	env := screentest.New(t)
	m := newAppModel(env.Env)

	snap, err := env.Orch.GetStarted()
	if err != nil {
		t.Fatalf("get started: %v", err)
	}
	updated, _ := m.Update(screen.StateMsg{State: snap})
	m = updated.(AppModel)
	if _, ok := m.router.Active().(*auth.AuthScreen); !ok {
		t.Fatalf("expected auth screen, got %T", m.router.Active())
	}
	if m.router.Depth() != 1 {
		t.Errorf("expected a single screen, got %d", m.router.Depth())
	}
}

func TestRestoredSessionOpensCreate(t *testing.T) {
	env := screentest.New(t)
	env.Onboard(t)

	m := newAppModel(env.Env)
	if _, ok := m.router.Active().(*create.CreateScreen); !ok {
		t.Fatalf("expected create screen, got %T", m.router.Active())
	}
}

func TestToggleThemeMode(t *testing.T) {
	env := screentest.New(t)
	m := newAppModel(env.Env)
	before := m.state.ThemeMode

	_, cmd := m.Update(screentest.Ctrl('t'))
	msg := screentest.StateOf(t, cmd)
	if msg.State.ThemeMode == before {
		t.Errorf("expected the mode to change from %s", before)
	}
}

func TestLogoutReturnsToLanding(t *testing.T) {
	env := screentest.New(t)
	env.Onboard(t)
	m := newAppModel(env.Env)

	_, cmd := m.Update(screentest.Ctrl('l'))
	msg := screentest.StateOf(t, cmd)
	if msg.State.View != orchestrator.ViewLanding {
		t.Fatalf("expected LANDING, got %s", msg.State.View)
	}
	updated, _ := m.Update(msg)
	m = updated.(AppModel)
	if _, ok := m.router.Active().(*landing.LandingScreen); !ok {
		t.Errorf("expected landing screen, got %T", m.router.Active())
	}
}

func TestViewRendersHeader(t *testing.T) {
	env := screentest.New(t)
	env.Onboard(t)
	m := newAppModel(env.Env)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(AppModel)

	m.View()
	header := layout.RenderHeader("New study pack", m.state.Identity.Name, false, m.width)
	if !strings.Contains(header, "Asha") {
		t.Errorf("expected the user in the header, got %q", header)
	}
	if m.state.Preferences != studypack.DefaultPreferences() {
		t.Errorf("expected default preferences, got %+v", m.state.Preferences)
	}
}
