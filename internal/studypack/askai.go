package studypack

import (
	"fmt"
	"strings"
)

// The helpers below turn a fragment of a pack into the context string that
// is pinned to a chat conversation.

func SummaryContext(tldr string) string {
	return "Summary: " + tldr
}

func PointContext(point string) string {
	return "Study Point: " + point
}

func NoteContext(n NoteSection) string {
	return fmt.Sprintf("Note Section \"%s\": %s", n.Title, n.Content)
}

func TermContext(t KeyTerm) string {
	return fmt.Sprintf("Term: \"%s\". Meaning: %s", t.Term, t.Meaning)
}

func FlashcardContext(f Flashcard) string {
	return fmt.Sprintf("Flashcard Question: %s. Answer: %s", f.Q, f.A)
}

func QuestionContext(q QuestionWithSolution) string {
	return fmt.Sprintf("Question: %s. Solution provided: %s", q.Question, q.Solution)
}

func QuizContext(q QuizQuestion) string {
	return fmt.Sprintf("Quiz Question: %s. Options: %s. Correct index: %d",
		q.Question, strings.Join(q.Options, ", "), q.CorrectIndex)
}

// VisualsPrompt is the default illustration prompt for a pack.
func VisualsPrompt(m Meta) string {
	return "Educational illustration about " + m.ChapterTitle
}
