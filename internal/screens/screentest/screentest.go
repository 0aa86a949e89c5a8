// Package screentest wires a real orchestrator over a temporary store for
// screen tests.
package screentest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/gateway"
	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack/studypacktest"
)

// Env is a screen.Env backed by mock providers.
type Env struct {
	screen.Env
	Text   *llm.MockProvider
	Images *llm.MockProvider
}

// New builds an Env on a store under t.TempDir.
func New(t testing.TB) *Env {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "notepilot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	log := logger.Nop()
	text, images := llm.NewMockProvider(), llm.NewMockProvider()
	gw := gateway.New(text, images, gateway.Config{ImageModel: "img-1k", ImageHDModel: "img-hd"}, log)

	ids := 0
	orch := orchestrator.New(orchestrator.Deps{
		Gateway: gw,
		Packs:   store.NewPackRepo(st.Partitions(), log),
		Session: session.New(store.NewSessionRepo(st.Partitions(), log), log),
		ImageFactory: func(context.Context, string) (llm.ImageProvider, error) {
			return images, nil
		},
		Log: log,
		Now: func() time.Time { return time.UnixMilli(1_700_000_000_000) },
		NewID: func() string {
			ids++
			return fmt.Sprintf("pack-%d", ids)
		},
	})
	return &Env{
		Env:    screen.Env{Ctx: context.Background(), Orch: orch, Log: log},
		Text:   text,
		Images: images,
	}
}

// Onboard signs in a user with default preferences and returns the CREATE
// state.
func (e *Env) Onboard(t testing.TB) orchestrator.Snapshot {
	t.Helper()
	e.Orch.Start(e.Ctx)
	if _, err := e.Orch.GetStarted(); err != nil {
		t.Fatalf("get started: %v", err)
	}
	if _, err := e.Orch.Login(e.Ctx, "Asha", "asha@example.com"); err != nil {
		t.Fatalf("login: %v", err)
	}
	s, err := e.Orch.ChoosePreferences(e.Ctx, session.PreferenceUpdate{})
	if err != nil {
		t.Fatalf("choose preferences: %v", err)
	}
	return s
}

// OpenPack onboards and generates the fixture pack, returning the
// VIEW_PACK state.
func (e *Env) OpenPack(t testing.TB) orchestrator.Snapshot {
	t.Helper()
	e.Onboard(t)
	e.Text.AddResponse(llm.MockResponse{Content: studypacktest.JSON(studypacktest.Photosynthesis())})
	s, err := e.Orch.SubmitInput(e.Ctx, studypacktest.Input())
	if err != nil {
		t.Fatalf("submit input: %v", err)
	}
	return s
}

// Key builds a printable key press.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special builds a non-printable key press such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Ctrl builds a ctrl+letter key press.
func Ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// Type sends every rune of text to s.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(Key(r))
	}
	return s
}

// StateOf runs cmd, descending into batches, and returns the first
// screen.StateMsg produced.
func StateOf(t testing.TB, cmd tea.Cmd) screen.StateMsg {
	t.Helper()
	if msg, ok := find(cmd); ok {
		return msg
	}
	t.Fatal("command produced no StateMsg")
	return screen.StateMsg{}
}

func find(cmd tea.Cmd) (screen.StateMsg, bool) {
	if cmd == nil {
		return screen.StateMsg{}, false
	}
	switch msg := cmd().(type) {
	case screen.StateMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if m, ok := find(c); ok {
				return m, true
			}
		}
	}
	return screen.StateMsg{}, false
}
