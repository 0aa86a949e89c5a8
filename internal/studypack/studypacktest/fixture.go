// Package studypacktest provides study pack fixtures for tests.
package studypacktest

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/notepilot/internal/studypack"
)

// Photosynthesis returns a complete, valid pack with every list section at
// the requested count and a mind map.
func Photosynthesis() studypack.StudyPackData {
	d := studypack.StudyPackData{
		Meta: studypack.Meta{
			Subject:      "Biology",
			Grade:        "Grade 8",
			ChapterTitle: "Photosynthesis",
			Language:     "English",
		},
		Summary: studypack.Summary{
			TLDR: "Plants turn light, water and carbon dioxide into glucose and oxygen.",
		},
		Notes: []studypack.NoteSection{
			{Title: "Light reactions", Content: "Chlorophyll absorbs light. Water is split. Oxygen is released. ATP and NADPH are made."},
			{Title: "Calvin cycle", Content: "Carbon dioxide is fixed by RuBisCO. ATP and NADPH power the cycle. Glucose is built. RuBP is regenerated."},
		},
		ImportantQuestions: studypack.ImportantQuestions{
			OneMark:   []studypack.QuestionWithSolution{{Question: "Name the green pigment.", Solution: "Chlorophyll."}},
			ThreeMark: []studypack.QuestionWithSolution{{Question: "List the raw materials.", Solution: "Light, water and carbon dioxide."}},
			FiveMark:  []studypack.QuestionWithSolution{{Question: "Explain both stages.", Solution: "Light reactions make ATP; the Calvin cycle fixes carbon."}},
		},
		Quiz: studypack.Quiz{Instructions: "Choose the best answer."},
		MindMap: &studypack.MindMap{
			MermaidCode: "graph TD\n  A[Photosynthesis] --> B[Light reactions]\n  A --> C[Calvin cycle]",
		},
	}
	for i := range studypack.TargetCount {
		d.Summary.ImportantPoints = append(d.Summary.ImportantPoints, fmt.Sprintf("Point %d", i+1))
		d.KeyTerms = append(d.KeyTerms, studypack.KeyTerm{
			Term:    fmt.Sprintf("Term %d", i+1),
			Meaning: fmt.Sprintf("Meaning %d", i+1),
			Example: fmt.Sprintf("Example %d", i+1),
		})
		d.Flashcards = append(d.Flashcards, studypack.Flashcard{
			Q: fmt.Sprintf("Question %d?", i+1),
			A: fmt.Sprintf("Answer %d", i+1),
		})
		d.Quiz.Questions = append(d.Quiz.Questions, studypack.QuizQuestion{
			ID:           i + 1,
			Question:     fmt.Sprintf("Quiz %d?", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
			Explanation:  "Because.",
			Difficulty:   "easy",
		})
	}
	return d
}

// JSON returns d encoded the way a model would return it.
func JSON(d studypack.StudyPackData) []byte {
	b, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	return b
}

// Pack wraps d with identity fields.
func Pack(id string, createdAt int64, d studypack.StudyPackData) studypack.Pack {
	return studypack.Pack{StudyPackData: d, ID: id, CreatedAt: createdAt}
}

// Input returns the matching form submission with text long enough to pass
// the recommended minimum.
func Input() studypack.Input {
	text := ""
	for len(text) < 600 {
		text += "Photosynthesis is the process by which green plants use sunlight to make food. "
	}
	return studypack.Input{
		Grade:        "Grade 8",
		Subject:      "Biology",
		ChapterTitle: "Photosynthesis",
		Language:     "English",
		ChapterText:  text,
	}
}
