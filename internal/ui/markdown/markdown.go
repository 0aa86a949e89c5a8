// Package markdown turns study packs into Markdown and renders it for the
// terminal with glamour.
package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/abhisek/notepilot/internal/studypack"
)

// Summary renders the TL;DR and the numbered important points.
func Summary(s studypack.Summary) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	b.WriteString("> " + s.TLDR + "\n\n")
	b.WriteString("### Important points\n\n")
	for i, p := range s.ImportantPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return b.String()
}

// Notes renders note sections. A nil expanded map shows every section in
// full; otherwise collapsed sections show their title only.
func Notes(notes []studypack.NoteSection, expanded map[int]bool) string {
	var b strings.Builder
	b.WriteString("## Notes\n\n")
	for i, n := range notes {
		open := expanded == nil || expanded[i]
		marker := "▸"
		if open {
			marker = "▾"
		}
		fmt.Fprintf(&b, "### %s %s\n\n", marker, n.Title)
		if open {
			b.WriteString(n.Content + "\n\n")
		}
	}
	return b.String()
}

// Terms renders the key terms with the same expansion rule as Notes.
func Terms(terms []studypack.KeyTerm, expanded map[int]bool) string {
	var b strings.Builder
	b.WriteString("## Key terms\n\n")
	for i, t := range terms {
		open := expanded == nil || expanded[i]
		fmt.Fprintf(&b, "- **%s**", t.Term)
		if open {
			fmt.Fprintf(&b, ": %s", t.Meaning)
			if t.Example != "" {
				fmt.Fprintf(&b, " _e.g. %s_", t.Example)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Questions renders the exam questions grouped by marks.
func Questions(q studypack.ImportantQuestions) string {
	var b strings.Builder
	b.WriteString("## Important questions\n\n")
	group := func(title string, qs []studypack.QuestionWithSolution) {
		if len(qs) == 0 {
			return
		}
		fmt.Fprintf(&b, "### %s\n\n", title)
		for i, x := range qs {
			fmt.Fprintf(&b, "**Q%d.** %s\n\n%s\n\n", i+1, x.Question, x.Solution)
		}
	}
	group("1 mark", q.OneMark)
	group("3 marks", q.ThreeMark)
	group("5 marks", q.FiveMark)
	return b.String()
}

// Flashcards renders the whole deck as a table.
func Flashcards(cards []studypack.Flashcard) string {
	var b strings.Builder
	b.WriteString("## Flashcards\n\n| # | Question | Answer |\n|---|---|---|\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, cell(c.Q), cell(c.A))
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

// Quiz renders the questions with the answer marked.
func Quiz(q studypack.Quiz) string {
	var b strings.Builder
	b.WriteString("## Quiz\n\n")
	if q.Instructions != "" {
		b.WriteString("_" + q.Instructions + "_\n\n")
	}
	for i, x := range q.Questions {
		fmt.Fprintf(&b, "%d. %s", i+1, x.Question)
		if x.Difficulty != "" {
			fmt.Fprintf(&b, " `%s`", x.Difficulty)
		}
		b.WriteString("\n")
		for j, o := range x.Options {
			mark := " "
			if j == x.CorrectIndex {
				mark = "x"
			}
			fmt.Fprintf(&b, "   - [%s] %s\n", mark, o)
		}
		if x.Explanation != "" {
			fmt.Fprintf(&b, "\n   %s\n", x.Explanation)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MindMap renders the mermaid source as a code block.
func MindMap(m *studypack.MindMap) string {
	if m == nil {
		return "## Mind map\n\n_No mind map for this pack._\n"
	}
	return "## Mind map\n\n```mermaid\n" + m.MermaidCode + "\n```\n"
}

// Pack renders every section of p.
func Pack(p studypack.Pack) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Meta.ChapterTitle)
	fmt.Fprintf(&b, "%s · %s · %s", p.Meta.Subject, p.Meta.Grade, p.Meta.Language)
	if p.CreatedAt > 0 {
		fmt.Fprintf(&b, " · %s", time.UnixMilli(p.CreatedAt).Local().Format("Jan 02, 2006"))
	}
	b.WriteString("\n\n")
	for _, s := range []string{
		Summary(p.Summary),
		Notes(p.Notes, nil),
		Terms(p.KeyTerms, nil),
		Questions(p.ImportantQuestions),
		Flashcards(p.Flashcards),
		Quiz(p.Quiz),
		MindMap(p.MindMap),
	} {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// Render formats md for a terminal of the given width. On renderer failure
// the Markdown source is returned unchanged.
func Render(md string, width int, mode studypack.ThemeMode) string {
	style := "dark"
	if mode == studypack.ThemeModeLight {
		style = "light"
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
