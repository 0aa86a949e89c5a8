// Package studypack defines the study pack data model shared by the
// gateway, the stores and the orchestrator.
package studypack

import "slices"

// Meta echoes the user's input, normalized by the model.
type Meta struct {
	Subject      string `json:"subject"`
	Grade        string `json:"grade"`
	ChapterTitle string `json:"chapter_title"`
	Language     string `json:"language"`
}

// Summary is the short overview of a chapter.
type Summary struct {
	TLDR            string   `json:"tl_dr"`
	ImportantPoints []string `json:"important_points"`
}

// NoteSection is one titled block of study notes.
type NoteSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// KeyTerm is a vocabulary entry.
type KeyTerm struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// Flashcard is a question/answer pair.
type Flashcard struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// QuestionWithSolution is an exam-style question with its model answer.
type QuestionWithSolution struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
}

// ImportantQuestions groups exam questions by mark weight.
type ImportantQuestions struct {
	OneMark   []QuestionWithSolution `json:"one_mark"`
	ThreeMark []QuestionWithSolution `json:"three_mark"`
	FiveMark  []QuestionWithSolution `json:"five_mark"`
}

// QuizQuestion is a multiple-choice question. CorrectIndex indexes Options.
type QuizQuestion struct {
	ID           int      `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
}

// Quiz is the multiple-choice section of a pack.
type Quiz struct {
	Instructions string         `json:"instructions"`
	Questions    []QuizQuestion `json:"questions"`
}

// MindMap holds a mermaid graph description.
type MindMap struct {
	MermaidCode string `json:"mermaidCode"`
}

// StudyPackData is the structured content produced by one generation call.
type StudyPackData struct {
	Meta               Meta               `json:"meta"`
	Summary            Summary            `json:"summary"`
	Notes              []NoteSection      `json:"notes"`
	KeyTerms           []KeyTerm          `json:"key_terms"`
	Flashcards         []Flashcard        `json:"flashcards"`
	ImportantQuestions ImportantQuestions `json:"important_questions"`
	Quiz               Quiz               `json:"quiz"`
	MindMap            *MindMap           `json:"mind_map,omitempty"`
}

// Pack is a persisted StudyPackData with its identity fields.
type Pack struct {
	StudyPackData
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// ImageSize selects the image generation profile.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// ImageSizes lists the accepted sizes in ascending order.
var ImageSizes = []ImageSize{ImageSize1K, ImageSize2K, ImageSize4K}

// Valid reports whether s is one of the accepted sizes.
func (s ImageSize) Valid() bool {
	switch s {
	case ImageSize1K, ImageSize2K, ImageSize4K:
		return true
	}
	return false
}

// GeneratedImage is an illustration attached to a pack.
type GeneratedImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	Size      ImageSize `json:"size"`
	CreatedAt int64     `json:"createdAt"`
}

// ChatRole is the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Clone returns a deep copy of the pack so that no slice is shared.
func (p Pack) Clone() Pack {
	out := p
	out.StudyPackData = p.StudyPackData.Clone()
	return out
}

// Clone returns a deep copy of d.
func (d StudyPackData) Clone() StudyPackData {
	out := d
	out.Summary.ImportantPoints = slices.Clone(d.Summary.ImportantPoints)
	out.Notes = slices.Clone(d.Notes)
	out.KeyTerms = slices.Clone(d.KeyTerms)
	out.Flashcards = slices.Clone(d.Flashcards)
	out.ImportantQuestions = ImportantQuestions{
		OneMark:   slices.Clone(d.ImportantQuestions.OneMark),
		ThreeMark: slices.Clone(d.ImportantQuestions.ThreeMark),
		FiveMark:  slices.Clone(d.ImportantQuestions.FiveMark),
	}
	out.Quiz.Questions = slices.Clone(d.Quiz.Questions)
	for i := range out.Quiz.Questions {
		out.Quiz.Questions[i].Options = slices.Clone(out.Quiz.Questions[i].Options)
	}
	if d.MindMap != nil {
		mm := *d.MindMap
		out.MindMap = &mm
	}
	return out
}
