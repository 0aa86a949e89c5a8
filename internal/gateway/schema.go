package gateway

import "github.com/abhisek/notepilot/internal/llm"

func str(desc string) map[string]any {
	if desc == "" {
		return map[string]any{"type": "string"}
	}
	return map[string]any{"type": "string", "description": desc}
}

func arrayOf(items map[string]any, desc string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": desc}
}

func object(props map[string]any, required ...any) map[string]any {
	o := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

var questionWithSolution = object(map[string]any{
	"question": str(""),
	"solution": str(""),
}, "question", "solution")

// StudyPackSchema defines the JSON schema for study pack generation.
// mind_map is requested but not required.
var StudyPackSchema = &llm.Schema{
	Name:        "study-pack",
	Description: "A complete study pack for one chapter",
	Definition: object(map[string]any{
		"meta": object(map[string]any{
			"subject":       str(""),
			"grade":         str(""),
			"chapter_title": str(""),
			"language":      str(""),
		}, "subject", "grade", "chapter_title", "language"),
		"summary": object(map[string]any{
			"tl_dr":            str("Two or three sentence overview"),
			"important_points": arrayOf(str(""), "Exactly 20 key points"),
		}, "tl_dr", "important_points"),
		"notes": arrayOf(object(map[string]any{
			"title":   str(""),
			"content": str("Detailed explanation, at least 3-4 sentences"),
		}, "title", "content"), "Study notes divided into logical sections"),
		"key_terms": arrayOf(object(map[string]any{
			"term":    str(""),
			"meaning": str(""),
			"example": str(""),
		}, "term", "meaning", "example"), "Exactly 20 key terms"),
		"flashcards": arrayOf(object(map[string]any{
			"q": str("Question side"),
			"a": str("Answer side"),
		}, "q", "a"), "Exactly 20 flashcards"),
		"important_questions": object(map[string]any{
			"one_mark":   arrayOf(questionWithSolution, "Short recall questions"),
			"three_mark": arrayOf(questionWithSolution, "Short answer questions"),
			"five_mark":  arrayOf(questionWithSolution, "Long answer questions"),
		}, "one_mark", "three_mark", "five_mark"),
		"quiz": object(map[string]any{
			"instructions": str(""),
			"questions": arrayOf(object(map[string]any{
				"id":            map[string]any{"type": "integer"},
				"question":      str(""),
				"options":       arrayOf(str(""), "Answer choices"),
				"correct_index": map[string]any{"type": "integer", "description": "Zero-based index into options"},
				"explanation":   str(""),
				"difficulty":    str("easy, medium or hard"),
			}, "id", "question", "options", "correct_index", "explanation", "difficulty"), "Exactly 20 questions"),
		}, "instructions", "questions"),
		"mind_map": object(map[string]any{
			"mermaidCode": str("Mermaid graph TD source for a concept map of the chapter"),
		}, "mermaidCode"),
	}, "meta", "summary", "notes", "key_terms", "flashcards", "important_questions", "quiz"),
}
