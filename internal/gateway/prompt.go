package gateway

import (
	"fmt"
	"strings"

	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/studypack"
)

const packSystemPrompt = `You are an expert educational content creator.`

const chatSystemPrompt = `You are a helpful study assistant for Notepilot. Your goal is to help students understand their study materials. Keep explanations clear, engaging, and accurate. If asked to 'explain like I'm 5', use simple metaphors.`

// ChatFallbackReply is returned when the model answers with nothing.
const ChatFallbackReply = "Sorry, I couldn't generate a response."

const pdfPlaceholder = "[See attached PDF content]"

func buildPackUserMessage(in studypack.Input) string {
	var b strings.Builder

	b.WriteString("Create a study pack from the content provided.\n\n")
	b.WriteString(fmt.Sprintf("GRADE: %s\n", in.Grade))
	b.WriteString(fmt.Sprintf("SUBJECT: %s\n", in.Subject))
	b.WriteString(fmt.Sprintf("CHAPTER TITLE: %s\n", in.ChapterTitle))
	b.WriteString(fmt.Sprintf("LANGUAGE: %s\n", in.Language))

	b.WriteString(`
Constraints:
- important_points: Exactly 20 items. Comprehensive coverage.
- notes: Create detailed, explanatory study notes divided into logical sections. Each section must have a title and a comprehensive explanation block (at least 3-4 sentences per section). Cover all main topics.
- key_terms: Exactly 20 items.
- flashcards: Exactly 20 items.
- quiz questions: Exactly 20 questions.
- important_questions: Exam-style questions with full solutions, grouped as one_mark, three_mark and five_mark.
- mind_map: A mermaid "graph TD" concept map of the chapter.
- Be concise in the summary, but detailed in the 'notes'.
`)

	b.WriteString("\nCHAPTER TEXT:\n")
	if in.HasPDF() {
		b.WriteString(pdfPlaceholder)
	} else {
		b.WriteString(in.ChapterText)
	}

	return b.String()
}

// BuildPackRequest assembles the structured generation request for in.
// A PDF travels as an inline attachment next to the instruction text.
func BuildPackRequest(in studypack.Input) llm.Request {
	msg := llm.Message{Role: llm.RoleUser, Content: buildPackUserMessage(in)}
	if in.HasPDF() {
		msg.Attachments = []llm.Attachment{{MIMEType: "application/pdf", Data: in.PDFData}}
	}
	return llm.Request{
		System:   packSystemPrompt,
		Messages: []llm.Message{msg},
		Schema:   StudyPackSchema,
	}
}

func buildChatUserMessage(message, pinned string) string {
	if pinned == "" {
		return message
	}
	return fmt.Sprintf("Context for the doubt:\n\"%s\"\n\nUser Question: %s", pinned, message)
}
