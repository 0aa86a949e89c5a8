// Package themepicker lets a new user choose theme, font and corner shape.
package themepicker

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

const (
	rowTheme = iota
	rowFont
	rowShape
	rowCount
)

var rowLabels = [rowCount]string{"Theme", "Font", "Corners"}

// PickerScreen cycles through the preference options.
type PickerScreen struct {
	env     screen.Env
	name    string
	row     int
	choice  [rowCount]int
	pending bool
	errMsg  string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a PickerScreen preset to the current preferences.
func New(env screen.Env, s orchestrator.Snapshot) *PickerScreen {
	p := &PickerScreen{env: env}
	if s.Identity != nil {
		p.name = s.Identity.Name
	}
	p.choice[rowTheme] = indexOf(studypack.Themes, s.Preferences.Theme)
	p.choice[rowFont] = indexOf(studypack.Fonts, s.Preferences.Font)
	p.choice[rowShape] = indexOf(studypack.Shapes, s.Preferences.Shape)
	return p
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func (p *PickerScreen) Init() tea.Cmd {
	return nil
}

func (p *PickerScreen) Title() string {
	return "Make it yours"
}

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Save"},
	}
}

func (p *PickerScreen) optionCount(row int) int {
	switch row {
	case rowTheme:
		return len(studypack.Themes)
	case rowFont:
		return len(studypack.Fonts)
	default:
		return len(studypack.Shapes)
	}
}

// Selection returns the preferences currently highlighted.
func (p *PickerScreen) Selection() studypack.Preferences {
	return studypack.Preferences{
		Theme: studypack.Themes[p.choice[rowTheme]],
		Font:  studypack.Fonts[p.choice[rowFont]],
		Shape: studypack.Shapes[p.choice[rowShape]],
	}
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		p.pending = false
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
		}
		return p, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			p.row = (p.row + rowCount - 1) % rowCount
		case "down", "j", "tab":
			p.row = (p.row + 1) % rowCount
		case "left", "h":
			n := p.optionCount(p.row)
			p.choice[p.row] = (p.choice[p.row] + n - 1) % n
		case "right", "l", "space":
			n := p.optionCount(p.row)
			p.choice[p.row] = (p.choice[p.row] + 1) % n
		case "enter":
			return p, p.save()
		}
	}
	return p, nil
}

func (p *PickerScreen) save() tea.Cmd {
	if p.pending {
		return nil
	}
	p.pending = true
	sel := p.Selection()
	return p.env.Do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return o.ChoosePreferences(ctx, session.PreferenceUpdate{Theme: &sel.Theme, Font: &sel.Font, Shape: &sel.Shape})
	})
}

func (p *PickerScreen) View(width, height int) string {
	sel := p.Selection()
	cardWidth := min(width-4, 60)

	var b strings.Builder
	greeting := "Pick a look"
	if p.name != "" {
		greeting = fmt.Sprintf("Hi %s, pick a look", p.name)
	}
	b.WriteString(theme.Title.Width(cardWidth).Render(greeting))
	b.WriteString("\n\n")

	values := [rowCount]string{string(sel.Theme), string(sel.Font), string(sel.Shape)}
	for i := range rowCount {
		label := fmt.Sprintf("%-8s", rowLabels[i])
		value := fmt.Sprintf("‹ %s ›", values[i])
		if i == p.row {
			b.WriteString(theme.Selected.Render("▸ "+label) + "  " + theme.Selected.Render(value))
		} else {
			b.WriteString(theme.Unselected.Render("  "+label) + "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(preview(sel))
	b.WriteString("\n")

	switch {
	case p.pending:
		b.WriteString(theme.Hint.Render("Saving..."))
	case p.errMsg != "":
		b.WriteString(theme.Banner.Render(p.errMsg))
	default:
		b.WriteString(theme.Hint.Render("You can change the light/dark mode any time with Ctrl+T."))
	}

	card := theme.Card.Width(cardWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// preview renders a swatch in the highlighted palette and corner shape.
func preview(sel studypack.Preferences) string {
	pal, ok := theme.Palettes[string(sel.Theme)]
	if !ok {
		return ""
	}
	border := lipgloss.RoundedBorder()
	switch sel.Shape {
	case studypack.ShapeSharp:
		border = lipgloss.NormalBorder()
	case studypack.ShapeRounded:
		border = lipgloss.ThickBorder()
	}
	swatch := func(c color.Color, label string) string {
		return lipgloss.NewStyle().
			Border(border).
			BorderForeground(pal.Primary).
			Foreground(c).
			Padding(0, 1).
			Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		swatch(pal.Primary, "Primary"),
		" ",
		swatch(pal.Secondary, "Secondary"),
		" ",
		swatch(pal.Accent, string(sel.Font)),
	)
}
