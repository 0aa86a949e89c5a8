package studypack

import (
	"fmt"
	"strings"
)

// TargetCount is the number of items requested for each list section.
// It is a target, not an invariant.
const TargetCount = 20

// Violation describes one structural problem in generated data.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Validate checks that every required field is present and that every quiz
// answer index points into its options. An empty result means the data is
// safe to persist and render.
func Validate(d StudyPackData) []Violation {
	var vs []Violation
	add := func(path, format string, args ...any) {
		vs = append(vs, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}
	blank := func(path, val string) {
		if strings.TrimSpace(val) == "" {
			add(path, "required")
		}
	}

	blank("meta.subject", d.Meta.Subject)
	blank("meta.grade", d.Meta.Grade)
	blank("meta.chapter_title", d.Meta.ChapterTitle)
	blank("meta.language", d.Meta.Language)

	blank("summary.tl_dr", d.Summary.TLDR)
	if d.Summary.ImportantPoints == nil {
		add("summary.important_points", "missing")
	}

	if d.Notes == nil {
		add("notes", "missing")
	}
	for i, n := range d.Notes {
		blank(fmt.Sprintf("notes[%d].title", i), n.Title)
		blank(fmt.Sprintf("notes[%d].content", i), n.Content)
	}

	if d.KeyTerms == nil {
		add("key_terms", "missing")
	}
	for i, kt := range d.KeyTerms {
		blank(fmt.Sprintf("key_terms[%d].term", i), kt.Term)
		blank(fmt.Sprintf("key_terms[%d].meaning", i), kt.Meaning)
	}

	if d.Flashcards == nil {
		add("flashcards", "missing")
	}
	for i, fc := range d.Flashcards {
		blank(fmt.Sprintf("flashcards[%d].q", i), fc.Q)
		blank(fmt.Sprintf("flashcards[%d].a", i), fc.A)
	}

	for _, group := range []struct {
		name string
		qs   []QuestionWithSolution
	}{
		{"one_mark", d.ImportantQuestions.OneMark},
		{"three_mark", d.ImportantQuestions.ThreeMark},
		{"five_mark", d.ImportantQuestions.FiveMark},
	} {
		if group.qs == nil {
			add("important_questions."+group.name, "missing")
		}
		for i, q := range group.qs {
			blank(fmt.Sprintf("important_questions.%s[%d].question", group.name, i), q.Question)
			blank(fmt.Sprintf("important_questions.%s[%d].solution", group.name, i), q.Solution)
		}
	}

	if d.Quiz.Questions == nil {
		add("quiz.questions", "missing")
	}
	for i, q := range d.Quiz.Questions {
		path := fmt.Sprintf("quiz.questions[%d]", i)
		blank(path+".question", q.Question)
		if len(q.Options) == 0 {
			add(path+".options", "must not be empty")
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			add(path+".correct_index", "%d out of range [0,%d)", q.CorrectIndex, len(q.Options))
		}
	}

	return vs
}

// Normalize trims surrounding whitespace and drops an empty mind map.
func Normalize(d StudyPackData) StudyPackData {
	d = d.Clone()
	d.Meta.Subject = strings.TrimSpace(d.Meta.Subject)
	d.Meta.Grade = strings.TrimSpace(d.Meta.Grade)
	d.Meta.ChapterTitle = strings.TrimSpace(d.Meta.ChapterTitle)
	d.Meta.Language = strings.TrimSpace(d.Meta.Language)
	d.Summary.TLDR = strings.TrimSpace(d.Summary.TLDR)
	for i := range d.Summary.ImportantPoints {
		d.Summary.ImportantPoints[i] = strings.TrimSpace(d.Summary.ImportantPoints[i])
	}
	if d.MindMap != nil && strings.TrimSpace(d.MindMap.MermaidCode) == "" {
		d.MindMap = nil
	}
	return d
}

// Shortfall reports a section that came back with fewer items than requested.
type Shortfall struct {
	Section string
	Got     int
	Want    int
}

// CountReport lists sections below TargetCount. It never fails a pack.
func CountReport(d StudyPackData) []Shortfall {
	var out []Shortfall
	check := func(section string, n int) {
		if n < TargetCount {
			out = append(out, Shortfall{Section: section, Got: n, Want: TargetCount})
		}
	}
	check("important_points", len(d.Summary.ImportantPoints))
	check("key_terms", len(d.KeyTerms))
	check("flashcards", len(d.Flashcards))
	check("quiz", len(d.Quiz.Questions))
	return out
}
