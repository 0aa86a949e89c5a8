// Package landing is the signed-out start screen.
package landing

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/ui/components"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	revealAt     = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

const tagline = "Turn any chapter into a study pack."

var features = []string{
	"Summary, notes and key terms",
	"Flashcards and a scored quiz",
	"Exam questions with solutions",
	"An AI tutor for every doubt",
}

// sparkle frames cycle beside the banner
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

// LandingScreen plays a short reveal and offers to get started.
type LandingScreen struct {
	env       screen.Env
	menu      components.Menu
	elapsed   time.Duration
	tickCount int
	started   bool
}

var _ screen.Screen = (*LandingScreen)(nil)
var _ screen.KeyHintProvider = (*LandingScreen)(nil)

// New creates a LandingScreen.
func New(env screen.Env) *LandingScreen {
	s := &LandingScreen{env: env}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Get started", Description: "Sign in and turn a chapter into a study pack", Action: s.getStarted},
		{Label: "Quit", Description: "Leave Notepilot", Action: func() tea.Cmd { return tea.Quit }},
	})
	return s
}

func (s *LandingScreen) Title() string {
	return ""
}

func (s *LandingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
}

func (s *LandingScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *LandingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if s.elapsed < totalDur {
			s.elapsed += tickInterval
		}
		s.tickCount++
		return s, tick()

	case tea.KeyPressMsg:
		// A key during the reveal skips to the menu.
		if s.elapsed < totalDur {
			s.elapsed = totalDur
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LandingScreen) getStarted() tea.Cmd {
	if s.started {
		return nil
	}
	s.started = true
	return s.env.Do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return o.GetStarted()
	})
}

func (s *LandingScreen) View(width, height int) string {
	banner := RenderBanner(width)

	if s.elapsed >= revealAt {
		sparkle := sparkleFrames[s.tickCount%len(sparkleFrames)]
		lines := strings.Split(banner, "\n")
		last := len(lines) - 1
		lines[last] = lines[last] + "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		banner = strings.Join(lines, "\n")
	}

	sections := []string{banner, ""}

	if s.elapsed >= totalDur {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(tagline),
			"",
		)
		for _, f := range features {
			sections = append(sections,
				lipgloss.NewStyle().Foreground(theme.Secondary).Render("•")+" "+
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(f))
		}
		sections = append(sections, "", s.menu.View())
	} else {
		sections = append(sections, theme.Hint.Render("press any key"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
