// Package history lists the signed-in user's saved study packs.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/router"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

// HistoryScreen displays saved packs, newest first.
type HistoryScreen struct {
	env      screen.Env
	packs    []studypack.Pack
	images   map[string]int
	active   string
	selected int
	expanded map[int]bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen over the packs in s.
func New(env screen.Env, s orchestrator.Snapshot) *HistoryScreen {
	h := &HistoryScreen{env: env, expanded: make(map[int]bool)}
	h.load(s)
	return h
}

func (s *HistoryScreen) load(snap orchestrator.Snapshot) {
	s.packs = snap.Packs
	s.active = ""
	if snap.ActivePack != nil {
		s.active = snap.ActivePack.ID
		s.images = map[string]int{s.active: len(snap.Images)}
	}
	if s.selected >= len(s.packs) {
		s.selected = max(len(s.packs)-1, 0)
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "My packs"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Space", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.load(msg.State)
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.packs)-1 {
				s.selected++
			}
		case "space":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "enter":
			if s.selected < len(s.packs) {
				id := s.packs[s.selected].ID
				return s, s.env.Do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
					return o.OpenPack(id)
				})
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	if len(s.packs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No study packs yet. Create your first one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, p := range s.packs {
		dateStr := time.UnixMilli(p.CreatedAt).Local().Format("Jan 02, 2006 15:04")

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		marker := " "
		if p.ID == s.active {
			marker = "●"
		}

		line := fmt.Sprintf("%s%s %s  %-14s %s", prefix, marker, dateStr,
			truncate(p.Meta.Subject, 14), truncate(p.Meta.ChapterTitle, 40))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(center(style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			dim := lipgloss.NewStyle().Foreground(theme.TextDim)
			details := []string{
				fmt.Sprintf("%s · %s", p.Meta.Grade, p.Meta.Language),
				truncate(p.Summary.TLDR, 80),
				fmt.Sprintf("%d notes · %d terms · %d flashcards · %d quiz questions",
					len(p.Notes), len(p.KeyTerms), len(p.Flashcards), len(p.Quiz.Questions)),
			}
			if n, ok := s.images[p.ID]; ok && n > 0 {
				details = append(details, fmt.Sprintf("%d illustration(s)", n))
			}
			for _, d := range details {
				b.WriteString(center(dim.Render("      " + d)))
				b.WriteString("\n")
			}
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
