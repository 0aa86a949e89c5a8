package themepicker

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screens/screentest"
	"github.com/abhisek/notepilot/internal/studypack"
)

func newTestPicker(t *testing.T) *PickerScreen {
	env := screentest.New(t)
	env.Orch.Start(env.Ctx)
	if _, err := env.Orch.GetStarted(); err != nil {
		t.Fatalf("get started: %v", err)
	}
	snap, err := env.Orch.Login(env.Ctx, "Asha", "asha@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return New(env.Env, snap)
}

func TestStartsOnDefaults(t *testing.T) {
	p := newTestPicker(t)
	if got := p.Selection(); got != studypack.DefaultPreferences() {
		t.Errorf("expected defaults, got %+v", got)
	}
	if !strings.Contains(p.View(100, 30), "Hi Asha") {
		t.Error("expected greeting with the user's name")
	}
}

func TestCyclingWraps(t *testing.T) {
	p := newTestPicker(t)

	p.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if got := p.Selection().Theme; got != studypack.Themes[len(studypack.Themes)-1] {
		t.Errorf("expected last theme after wrapping left, got %s", got)
	}

	p.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	p.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if got := p.Selection().Font; got != studypack.FontPlayfair {
		t.Errorf("expected %s, got %s", studypack.FontPlayfair, got)
	}
}

func TestSaveMovesToCreate(t *testing.T) {
	p := newTestPicker(t)
	p.Update(tea.KeyPressMsg{Code: tea.KeyRight})

	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := screentest.StateOf(t, cmd)
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if msg.State.View != orchestrator.ViewCreate {
		t.Errorf("expected CREATE, got %s", msg.State.View)
	}
	if msg.State.Preferences.Theme != studypack.ThemeEmerald {
		t.Errorf("expected emerald, got %s", msg.State.Preferences.Theme)
	}
}
