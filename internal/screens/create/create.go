// Package create is the chapter input form that starts generation.
package create

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/pdfinput"
	"github.com/abhisek/notepilot/internal/router"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/screens/history"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/components"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

// Focus order of the form.
const (
	focusGrade = iota
	focusSubject
	focusTitle
	focusLanguage
	focusText
	focusPDF
	focusSubmit
	focusCount
)

// CreateScreen edits the draft and submits it for generation.
type CreateScreen struct {
	env        screen.Env
	state      orchestrator.Snapshot
	inputs     map[int]*components.TextInput
	text       textarea.Model
	spinner    spinner.Model
	focus      int
	generating bool
	errMsg     string
}

var _ screen.Screen = (*CreateScreen)(nil)
var _ screen.KeyHintProvider = (*CreateScreen)(nil)
var _ screen.InputCapturer = (*CreateScreen)(nil)

// New creates the form prefilled from the orchestrator draft.
func New(env screen.Env, s orchestrator.Snapshot) *CreateScreen {
	grade := components.NewTextInput("Grade", strings.Join(studypack.Grades[:3], ", ")+"...", 40)
	subject := components.NewTextInput("Subject", "e.g. Biology", 60)
	title := components.NewTextInput("Chapter title", "e.g. Photosynthesis", 120)
	language := components.NewTextInput("Language", strings.Join(studypack.Languages, ", "), 40)
	pdf := components.NewTextInput("PDF file (optional)", "path/to/chapter.pdf", 0)

	ta := textarea.New()
	ta.Placeholder = "Paste the chapter text here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	c := &CreateScreen{
		env:   env,
		state: s,
		inputs: map[int]*components.TextInput{
			focusGrade:    &grade,
			focusSubject:  &subject,
			focusTitle:    &title,
			focusLanguage: &language,
			focusPDF:      &pdf,
		},
		text:    ta,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	d := s.Draft
	grade.SetValue(d.Grade)
	subject.SetValue(d.Subject)
	title.SetValue(d.ChapterTitle)
	language.SetValue(d.Language)
	if d.Language == "" {
		language.SetValue(studypack.DefaultLanguage)
	}
	c.text.SetValue(d.ChapterText)
	if s.Status == orchestrator.StatusError {
		c.errMsg = s.Error
	}
	return c
}

func (c *CreateScreen) Init() tea.Cmd {
	return c.setFocus(focusGrade)
}

func (c *CreateScreen) Title() string {
	return "New study pack"
}

func (c *CreateScreen) CapturingInput() bool {
	return c.focus != focusSubmit
}

func (c *CreateScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Generate"},
	}
	if len(c.state.Packs) > 0 {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+O", Description: "My packs"})
	}
	return hints
}

// Input returns the form contents.
func (c *CreateScreen) Input() studypack.Input {
	return studypack.Input{
		Grade:        c.inputs[focusGrade].Value(),
		Subject:      c.inputs[focusSubject].Value(),
		ChapterTitle: c.inputs[focusTitle].Value(),
		Language:     c.inputs[focusLanguage].Value(),
		ChapterText:  c.text.Value(),
	}
}

func (c *CreateScreen) setFocus(i int) tea.Cmd {
	if in, ok := c.inputs[c.focus]; ok {
		in.Blur()
	}
	c.text.Blur()
	c.focus = i
	if i == focusText {
		return c.text.Focus()
	}
	if in, ok := c.inputs[i]; ok {
		return in.Focus()
	}
	return nil
}

func (c *CreateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		c.generating = false
		c.state = msg.State
		switch {
		case msg.Err != nil:
			c.errMsg = msg.Err.Error()
		case msg.State.Status == orchestrator.StatusError:
			c.errMsg = msg.State.Error
		default:
			c.errMsg = ""
		}
		return c, nil

	case spinner.TickMsg:
		if !c.generating {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			return c, c.setFocus((c.focus + 1) % focusCount)
		case "shift+tab":
			return c, c.setFocus((c.focus + focusCount - 1) % focusCount)
		case "ctrl+s":
			return c, c.submit()
		case "ctrl+o":
			if len(c.state.Packs) == 0 {
				return c, nil
			}
			hs := history.New(c.env, c.state)
			return c, func() tea.Msg { return router.PushScreenMsg{Screen: hs} }
		case "enter":
			if c.focus == focusSubmit {
				return c, c.submit()
			}
			if c.focus != focusText {
				return c, c.setFocus(c.focus + 1)
			}
		}
	}

	if c.generating {
		return c, nil
	}

	var cmd tea.Cmd
	switch {
	case c.focus == focusText:
		c.text, cmd = c.text.Update(msg)
	case c.inputs[c.focus] != nil:
		in := c.inputs[c.focus]
		*in, cmd = in.Update(msg)
	}
	return c, cmd
}

func (c *CreateScreen) submit() tea.Cmd {
	if c.generating {
		return nil
	}
	in := c.Input()
	pdfPath := strings.TrimSpace(c.inputs[focusPDF].Value())

	c.generating = true
	c.errMsg = ""
	run := c.env.Do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		if pdfPath != "" {
			doc, err := pdfinput.Load(pdfPath)
			if err != nil {
				return o.SetDraft(in), err
			}
			in.PDFData = doc.Data
		}
		return o.SubmitInput(ctx, in)
	})
	return tea.Batch(run, c.spinner.Tick)
}

func (c *CreateScreen) View(width, height int) string {
	formWidth := min(width-4, 96)
	half := (formWidth - 4) / 2
	c.text.SetWidth(formWidth - 4)
	c.text.SetHeight(max(height-22, 4))

	row := func(a, b int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half).Render(c.inputs[a].View()),
			"  ",
			lipgloss.NewStyle().Width(half).Render(c.inputs[b].View()),
		)
	}

	var b strings.Builder
	b.WriteString(row(focusGrade, focusSubject))
	b.WriteString("\n\n")
	b.WriteString(row(focusTitle, focusLanguage))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	if c.focus == focusText {
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	b.WriteString(label.Render("Chapter text"))
	b.WriteString("\n")
	b.WriteString(c.text.View())
	b.WriteString("\n")
	b.WriteString(c.counter())
	b.WriteString("\n\n")
	b.WriteString(c.inputs[focusPDF].View())
	b.WriteString("\n\n")

	switch {
	case c.generating:
		b.WriteString(c.spinner.View() + " " + theme.Hint.Render("Generating your study pack. This can take a minute..."))
	default:
		btn := components.Button{Label: "Generate study pack", Focused: c.focus == focusSubmit}
		if strings.TrimSpace(c.text.Value()) == "" && c.inputs[focusPDF].Value() == "" {
			btn.Disabled = "Paste chapter text or give a PDF path"
		}
		b.WriteString(btn.View())
	}

	if c.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Banner.Width(formWidth - 4).Render(c.errMsg))
	}

	if n := len(c.state.Packs); n > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d saved pack(s). Ctrl+O to browse.", n)))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		theme.Card.Width(formWidth).Render(b.String()))
}

// counter shows the character count and the advisory minimum.
func (c *CreateScreen) counter() string {
	n := len([]rune(strings.TrimSpace(c.text.Value())))
	text := fmt.Sprintf("%d characters", n)
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if n > 0 && n < studypack.MinChapterChars {
		text += fmt.Sprintf(" (at least %d recommended)", studypack.MinChapterChars)
		style = lipgloss.NewStyle().Foreground(theme.Accent)
	}
	return style.Render(text)
}
