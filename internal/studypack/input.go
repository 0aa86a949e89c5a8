package studypack

import (
	"fmt"
	"strings"
)

// MinChapterChars is the recommended minimum length of pasted chapter text.
// It is advisory: shorter text is accepted.
const MinChapterChars = 50

// DefaultLanguage is preselected on the input form.
const DefaultLanguage = "English"

// Grades offered by the input form.
var Grades = []string{"Grade 5", "Grade 6", "Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12", "College"}

// Languages offered by the input form.
var Languages = []string{"English", "Spanish", "French", "Hindi", "German", "Chinese"}

// Input is what the user submits to generate a pack.
type Input struct {
	Grade        string `json:"grade"`
	Subject      string `json:"subject"`
	ChapterTitle string `json:"chapterTitle"`
	Language     string `json:"language"`
	ChapterText  string `json:"chapterText"`

	// PDFData is a base64-encoded PDF document. When set it replaces
	// ChapterText as the source material.
	PDFData string `json:"pdfData,omitempty"`
}

// InputError lists the fields that block submission.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("missing required input: %s", strings.Join(e.Fields, ", "))
}

// HasPDF reports whether a document is attached.
func (in Input) HasPDF() bool {
	return in.PDFData != ""
}

// Validate checks the submission precondition: grade, subject and chapter
// title are non-empty and there is either chapter text or a PDF.
func (in Input) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Grade) == "" {
		missing = append(missing, "grade")
	}
	if strings.TrimSpace(in.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(in.ChapterTitle) == "" {
		missing = append(missing, "chapter title")
	}
	if strings.TrimSpace(in.ChapterText) == "" && !in.HasPDF() {
		missing = append(missing, "chapter text or PDF")
	}
	if len(missing) > 0 {
		return &InputError{Fields: missing}
	}
	return nil
}

// ShortText reports whether pasted text is below the recommended minimum.
func (in Input) ShortText() bool {
	return !in.HasPDF() && len([]rune(strings.TrimSpace(in.ChapterText))) < MinChapterChars
}

// Normalized trims every field and fills the default language.
func (in Input) Normalized() Input {
	in.Grade = strings.TrimSpace(in.Grade)
	in.Subject = strings.TrimSpace(in.Subject)
	in.ChapterTitle = strings.TrimSpace(in.ChapterTitle)
	in.Language = strings.TrimSpace(in.Language)
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	in.ChapterText = strings.TrimSpace(in.ChapterText)
	return in
}
