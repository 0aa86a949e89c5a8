// Package app hosts the root Bubble Tea model. It maps the orchestrator's
// view to a screen and keeps the palette in sync with the preferences.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/router"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/screens/auth"
	"github.com/abhisek/notepilot/internal/screens/create"
	"github.com/abhisek/notepilot/internal/screens/landing"
	"github.com/abhisek/notepilot/internal/screens/packview"
	"github.com/abhisek/notepilot/internal/screens/themepicker"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

// Options configures Run.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Log          *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    screen.Env
	router *router.Router
	state  orchestrator.Snapshot
	width  int
	height int
}

// newAppModel restores the session and opens the screen for its view.
func newAppModel(env screen.Env) AppModel {
	state := env.Orch.Start(env.Ctx)
	applyTheme(state)
	return AppModel{
		env:    env,
		router: router.New(screenFor(env, state)),
		state:  state,
	}
}

// screenFor builds the base screen of a view.
func screenFor(env screen.Env, s orchestrator.Snapshot) screen.Screen {
	switch s.View {
	case orchestrator.ViewAuth:
		return auth.New(env)
	case orchestrator.ViewThemePicker:
		return themepicker.New(env, s)
	case orchestrator.ViewCreate:
		return create.New(env, s)
	case orchestrator.ViewPack:
		return packview.New(env, s)
	default:
		return landing.New(env)
	}
}

func applyTheme(s orchestrator.Snapshot) {
	theme.Apply(string(s.Preferences.Theme), s.ThemeMode == studypack.ThemeModeDark, string(s.Preferences.Shape))
}

func (m AppModel) Init() tea.Cmd {
	if a := m.router.Active(); a != nil {
		return a.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.StateMsg:
		prev := m.state.View
		m.state = msg.State
		applyTheme(msg.State)
		if msg.State.View != prev {
			m.env.Log.Debug("view changed", "from", string(prev), "to", string(msg.State.View))
			return m, m.router.Reset(screenFor(m.env, msg.State))
		}

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			return m, m.env.Sync(func(o *orchestrator.Orchestrator) orchestrator.Snapshot {
				return o.ToggleThemeMode(m.env.Ctx)
			})
		case "ctrl+l":
			if m.state.SignedIn() {
				return m, m.env.Sync(func(o *orchestrator.Orchestrator) orchestrator.Snapshot {
					return o.Logout(m.env.Ctx)
				})
			}
		case "esc":
			if m.router.Depth() > 1 && !m.capturing() {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) capturing() bool {
	c, ok := m.router.Active().(screen.InputCapturer)
	return ok && c.CapturingInput()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if m.state.Identity != nil {
		user = m.state.Identity.Name
	}
	header := layout.RenderHeader(title, user, m.state.ThemeMode == studypack.ThemeModeDark, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+T", Description: "Light/Dark"})
	if m.state.SignedIn() {
		footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+L", Description: "Logout"})
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := screen.Env{Ctx: ctx, Orch: opts.Orchestrator, Log: log}
	p := tea.NewProgram(newAppModel(env))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
