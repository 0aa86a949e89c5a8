package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/ui/theme"
)

// MultiChoice renders one quiz question. The orchestrator owns the answer
// state; the component only tracks the cursor.
type MultiChoice struct {
	Question     string
	Options      []string
	CorrectIndex int
	Cursor       int
	Answered     bool
	ChosenIndex  int
	Explanation  string
}

// NewMultiChoice creates a new multiple-choice view.
func NewMultiChoice(question string, options []string, correctIndex int) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		ChosenIndex:  -1,
	}
}

// Move shifts the cursor by delta, clamped to the options.
func (m *MultiChoice) Move(delta int) {
	if m.Answered || len(m.Options) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Options)-1)
}

// View renders the question, options and, once answered, the explanation.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Answered {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+rune(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Answered && i == m.CorrectIndex:
			style = theme.Correct
			line += "  ✓"
		case m.Answered && i == m.ChosenIndex:
			style = theme.Incorrect
			line += "  ✗"
		case m.Answered:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}

	if m.Answered && m.Explanation != "" {
		b.WriteString("\n" + theme.Hint.Width(width).Render(m.Explanation) + "\n")
	}
	return b.String()
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Answered && m.ChosenIndex == m.CorrectIndex
}
