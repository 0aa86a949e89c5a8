package packview

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/components"
	"github.com/abhisek/notepilot/internal/ui/layout"
	"github.com/abhisek/notepilot/internal/ui/markdown"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

func tabHints(t orchestrator.Tab) []layout.KeyHint {
	switch t {
	case orchestrator.TabNotes, orchestrator.TabTerms:
		return []layout.KeyHint{{Key: "Enter", Description: "Expand"}, {Key: "a", Description: "Ask AI"}}
	case orchestrator.TabFlashcards:
		return []layout.KeyHint{{Key: "←→", Description: "Card"}, {Key: "Space", Description: "Flip"}, {Key: "a", Description: "Ask AI"}}
	case orchestrator.TabQuiz:
		return []layout.KeyHint{{Key: "Enter", Description: "Answer"}, {Key: "r", Description: "Restart"}, {Key: "a", Description: "Ask AI"}}
	case orchestrator.TabVisuals:
		return []layout.KeyHint{{Key: "g", Description: "Generate"}, {Key: "p", Description: "Prompt"}, {Key: "s", Description: "Size"}, {Key: "w", Description: "Save"}}
	case orchestrator.TabMindMap:
		return []layout.KeyHint{{Key: "PgUp/PgDn", Description: "Scroll"}}
	}
	return []layout.KeyHint{{Key: "↑↓", Description: "Move"}, {Key: "a", Description: "Ask AI"}}
}

type question struct {
	group string
	q     studypack.QuestionWithSolution
}

func flattenQuestions(iq studypack.ImportantQuestions) []question {
	var out []question
	for _, g := range []struct {
		name string
		qs   []studypack.QuestionWithSolution
	}{
		{"1 mark", iq.OneMark},
		{"3 marks", iq.ThreeMark},
		{"5 marks", iq.FiveMark},
	} {
		for _, q := range g.qs {
			out = append(out, question{group: g.name, q: q})
		}
	}
	return out
}

// itemCount is the number of cursor positions on the current tab.
func (p *PackScreen) itemCount() int {
	pk := p.state.ActivePack
	if pk == nil {
		return 0
	}
	switch p.state.Tab {
	case orchestrator.TabSummary:
		return 1 + len(pk.Summary.ImportantPoints)
	case orchestrator.TabNotes:
		return len(pk.Notes)
	case orchestrator.TabTerms:
		return len(pk.KeyTerms)
	case orchestrator.TabQuestions:
		return len(flattenQuestions(pk.ImportantQuestions))
	case orchestrator.TabQuiz:
		if q, ok := p.currentQuiz(); ok {
			return len(q.Options)
		}
	case orchestrator.TabVisuals:
		return len(p.state.Images)
	}
	return 0
}

func (p *PackScreen) currentQuiz() (studypack.QuizQuestion, bool) {
	pk := p.state.ActivePack
	if pk == nil || p.state.Quiz.Finished {
		return studypack.QuizQuestion{}, false
	}
	i := p.state.Quiz.Index
	if i < 0 || i >= len(pk.Quiz.Questions) {
		return studypack.QuizQuestion{}, false
	}
	return pk.Quiz.Questions[i], true
}

// askAIFragment is the chat context for the item under the cursor.
func (p *PackScreen) askAIFragment() string {
	pk := p.state.ActivePack
	if pk == nil {
		return ""
	}
	c := p.cursor[p.state.Tab]
	switch p.state.Tab {
	case orchestrator.TabSummary:
		if c == 0 {
			return studypack.SummaryContext(pk.Summary.TLDR)
		}
		if c-1 < len(pk.Summary.ImportantPoints) {
			return studypack.PointContext(pk.Summary.ImportantPoints[c-1])
		}
	case orchestrator.TabNotes:
		if c < len(pk.Notes) {
			return studypack.NoteContext(pk.Notes[c])
		}
	case orchestrator.TabTerms:
		if c < len(pk.KeyTerms) {
			return studypack.TermContext(pk.KeyTerms[c])
		}
	case orchestrator.TabQuestions:
		if qs := flattenQuestions(pk.ImportantQuestions); c < len(qs) {
			return studypack.QuestionContext(qs[c].q)
		}
	case orchestrator.TabFlashcards:
		if i := p.state.FlashcardIndex; i < len(pk.Flashcards) {
			return studypack.FlashcardContext(pk.Flashcards[i])
		}
	case orchestrator.TabQuiz:
		if q, ok := p.currentQuiz(); ok {
			return studypack.QuizContext(q)
		}
	}
	return ""
}

// updateTab handles the keys specific to the current tab.
func (p *PackScreen) updateTab(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "up", "k":
		p.moveCursor(-1, p.itemCount())
		return nil
	case "down", "j":
		p.moveCursor(1, p.itemCount())
		return nil
	}

	c := p.cursor[p.state.Tab]
	switch p.state.Tab {
	case orchestrator.TabNotes:
		if key == "enter" || key == "space" {
			return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
				return o.ToggleNote(c)
			})
		}
	case orchestrator.TabTerms:
		if key == "enter" || key == "space" {
			return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
				return o.ToggleTerm(c)
			})
		}
	case orchestrator.TabFlashcards:
		i := p.state.FlashcardIndex
		switch key {
		case "left", "h":
			i--
		case "right", "l":
			i++
		case "enter", "space":
			return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
				return o.FlipFlashcard()
			})
		default:
			return nil
		}
		return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
			return o.SetFlashcard(i)
		})
	case orchestrator.TabQuiz:
		return p.updateQuiz(key, c)
	case orchestrator.TabVisuals:
		return p.updateVisuals(key)
	}
	return nil
}

func (p *PackScreen) updateQuiz(key string, c int) tea.Cmd {
	q := p.state.Quiz
	var op func(o *orchestrator.Orchestrator) (orchestrator.Snapshot, error)
	switch {
	case key == "r":
		op = (*orchestrator.Orchestrator).RestartQuiz
	case key == "n" && q.Answered:
		op = (*orchestrator.Orchestrator).NextQuizQuestion
	case key == "enter" && q.Finished:
		op = (*orchestrator.Orchestrator).RestartQuiz
	case key == "enter" && q.Answered:
		op = (*orchestrator.Orchestrator).NextQuizQuestion
	case key == "enter":
		op = func(o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) { return o.AnswerQuiz(c) }
	default:
		return nil
	}
	return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return op(o)
	})
}

// renderTab returns the body of the current tab and the line the cursor
// is on.
func (p *PackScreen) renderTab(width int) (string, int) {
	pk := p.state.ActivePack
	if pk == nil {
		return "", 0
	}
	c := p.cursor[p.state.Tab]
	switch p.state.Tab {
	case orchestrator.TabSummary:
		return p.renderSummary(pk, c, width)
	case orchestrator.TabNotes:
		return p.renderNotes(pk, c, width)
	case orchestrator.TabTerms:
		return p.renderTerms(pk, c, width)
	case orchestrator.TabQuestions:
		return p.renderQuestions(pk, c, width)
	case orchestrator.TabFlashcards:
		return p.renderFlashcard(pk, width), 0
	case orchestrator.TabQuiz:
		return p.renderQuiz(pk, c, width), 0
	case orchestrator.TabMindMap:
		return p.markdown(markdown.MindMap(pk.MindMap), width), 0
	case orchestrator.TabVisuals:
		return p.renderVisuals(width), 0
	}
	return "", 0
}

// markdown renders md with glamour, caching the result.
func (p *PackScreen) markdown(md string, width int) string {
	key := fmt.Sprintf("%d|%s|%s", width, p.state.ThemeMode, md)
	if out, ok := p.rendered[key]; ok {
		return out
	}
	out := markdown.Render(md, width, p.state.ThemeMode)
	p.rendered[key] = out
	return out
}

// lines accumulates rendered rows and remembers where the cursor is.
type lines struct {
	rows       []string
	cursorLine int
}

func (l *lines) add(s string) {
	l.rows = append(l.rows, strings.Split(s, "\n")...)
}

func (l *lines) mark() {
	l.cursorLine = len(l.rows)
}

func (l *lines) String() string {
	return strings.Join(l.rows, "\n")
}

func pointer(selected bool) string {
	if selected {
		return theme.Selected.Render("▸ ")
	}
	return "  "
}

func (p *PackScreen) renderSummary(pk *studypack.Pack, c, width int) (string, int) {
	var l lines
	wrap := lipgloss.NewStyle().Width(width - 4)

	l.add(theme.Selected.Render("TL;DR"))
	l.mark()
	l.add(pointer(c == 0) + wrap.Foreground(theme.Text).Render(pk.Summary.TLDR))
	l.add("")
	l.add(theme.Selected.Render("Important points"))
	for i, pt := range pk.Summary.ImportantPoints {
		if c == i+1 {
			l.mark()
		}
		style := wrap.Foreground(theme.Text)
		if c == i+1 {
			style = wrap.Foreground(theme.Primary)
		}
		l.add(pointer(c == i+1) + style.Render(fmt.Sprintf("%2d. %s", i+1, pt)))
	}
	return l.String(), l.cursorLine
}

func (p *PackScreen) renderNotes(pk *studypack.Pack, c, width int) (string, int) {
	var l lines
	for i, n := range pk.Notes {
		if i == c {
			l.mark()
		}
		open := p.state.ExpandedNotes[i]
		marker := "▸"
		if open {
			marker = "▾"
		}
		title := theme.Unselected.Render(marker + " " + n.Title)
		if i == c {
			title = theme.Selected.Render(marker + " " + n.Title)
		}
		l.add(pointer(i == c) + title)
		if open {
			l.add(p.markdown(n.Content, width-4))
		}
		l.add("")
	}
	return l.String(), l.cursorLine
}

func (p *PackScreen) renderTerms(pk *studypack.Pack, c, width int) (string, int) {
	var l lines
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(width - 6)
	for i, t := range pk.KeyTerms {
		if i == c {
			l.mark()
		}
		term := theme.Unselected.Render(t.Term)
		if i == c {
			term = theme.Selected.Render(t.Term)
		}
		l.add(pointer(i == c) + term)
		if p.state.ExpandedTerms[i] {
			l.add("    " + lipgloss.NewStyle().Foreground(theme.Text).Width(width-6).Render(t.Meaning))
			if t.Example != "" {
				l.add("    " + dim.Italic(true).Render("e.g. "+t.Example))
			}
		}
	}
	return l.String(), l.cursorLine
}

func (p *PackScreen) renderQuestions(pk *studypack.Pack, c, width int) (string, int) {
	qs := flattenQuestions(pk.ImportantQuestions)
	if len(qs) == 0 {
		return theme.Hint.Render("No exam questions in this pack."), 0
	}
	var l lines
	group := ""
	for i, q := range qs {
		if q.group != group {
			group = q.group
			if i > 0 {
				l.add("")
			}
			l.add(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(group))
		}
		if i == c {
			l.mark()
		}
		style := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 4)
		if i == c {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		l.add(pointer(i == c) + style.Render(q.q.Question))
		l.add(p.markdown(q.q.Solution, width-4))
	}
	return l.String(), l.cursorLine
}

func (p *PackScreen) renderFlashcard(pk *studypack.Pack, width int) string {
	n := len(pk.Flashcards)
	if n == 0 {
		return theme.Hint.Render("No flashcards in this pack.")
	}
	i := p.state.FlashcardIndex
	card := pk.Flashcards[i]

	face, label := card.Q, "Question"
	if p.state.FlashcardFlipped {
		face, label = card.A, "Answer"
	}
	cardWidth := min(width-4, 70)
	box := theme.Card.
		Width(cardWidth).
		Height(9).
		Align(lipgloss.Center, lipgloss.Center).
		BorderForeground(theme.Primary).
		Render(theme.Hint.Render(label) + "\n\n" + theme.Body.Bold(true).Render(face))

	bar := components.NewProgressBar("Card", i+1, n, cardWidth)
	return lipgloss.JoinVertical(lipgloss.Center, box, "", bar.View())
}

func (p *PackScreen) renderQuiz(pk *studypack.Pack, c, width int) string {
	qv := p.state.Quiz
	total := len(pk.Quiz.Questions)
	if total == 0 {
		return theme.Hint.Render("No quiz in this pack.")
	}
	if qv.Finished {
		res := qv.Result
		verdict := "Keep practicing!"
		switch {
		case res.Percentage >= 80:
			verdict = "Excellent work!"
		case res.Percentage >= 50:
			verdict = "Good effort!"
		}
		body := theme.Title.Render("Quiz complete") + "\n\n" +
			theme.Body.Render(fmt.Sprintf("You scored %d / %d (%d%%)", res.Correct, res.Total, res.Percentage)) + "\n\n" +
			theme.Hint.Render(verdict+" Press Enter to try again.")
		return theme.Card.Width(min(width-4, 60)).Align(lipgloss.Center).Render(body)
	}

	q, _ := p.currentQuiz()
	mc := components.NewMultiChoice(q.Question, q.Options, q.CorrectIndex)
	mc.Cursor = c
	mc.Answered = qv.Answered
	mc.ChosenIndex = qv.Selected
	mc.Explanation = q.Explanation

	var b strings.Builder
	if pk.Quiz.Instructions != "" && qv.Index == 0 && !qv.Answered {
		b.WriteString(theme.Hint.Render(pk.Quiz.Instructions) + "\n\n")
	}
	b.WriteString(components.NewProgressBar("Question", qv.Index+1, total, min(width-4, 70)).View())
	b.WriteString("\n\n")
	b.WriteString(mc.View(width - 4))
	if qv.Answered {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press Enter for the next question."))
	}
	return b.String()
}
