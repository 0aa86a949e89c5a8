package landing

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/screens/screentest"
)

func newTestLanding(t *testing.T) (*LandingScreen, *screentest.Env) {
	env := screentest.New(t)
	env.Orch.Start(env.Ctx)
	return New(env.Env), env
}

func sendTicks(s *LandingScreen, n int) {
	var sc screen.Screen = s
	for i := 0; i < n; i++ {
		sc, _ = sc.Update(tickMsg(time.Now()))
	}
}

func TestRevealPhases(t *testing.T) {
	s, _ := newTestLanding(t)

	if strings.Contains(s.View(100, 30), tagline) {
		t.Error("tagline should not be visible at start")
	}

	sendTicks(s, 15)
	if s.elapsed != totalDur {
		t.Errorf("expected elapsed %v, got %v", totalDur, s.elapsed)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, tagline) {
		t.Error("tagline should be visible after the reveal")
	}
	if !strings.Contains(view, "Get started") {
		t.Error("menu should be visible after the reveal")
	}
}

func TestElapsedIsCapped(t *testing.T) {
	s, _ := newTestLanding(t)
	sendTicks(s, 40)
	if s.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, s.elapsed)
	}
}

func TestKeypressSkipsReveal(t *testing.T) {
	s, _ := newTestLanding(t)
	sendTicks(s, 2)

	_, cmd := s.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Error("skipping the reveal should not produce a command")
	}
	if s.elapsed != totalDur {
		t.Errorf("expected reveal to complete, elapsed %v", s.elapsed)
	}
}

func TestGetStartedMovesToAuth(t *testing.T) {
	s, _ := newTestLanding(t)
	sendTicks(s, 15)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := screentest.StateOf(t, cmd)
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if msg.State.View != orchestrator.ViewAuth {
		t.Errorf("expected view AUTH, got %s", msg.State.View)
	}

	// A second Enter must not fire another transition.
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("second enter should not produce a command")
	}
}

func TestTitleEmpty(t *testing.T) {
	s, _ := newTestLanding(t)
	if s.Title() != "" {
		t.Errorf("expected empty title, got %q", s.Title())
	}
}
