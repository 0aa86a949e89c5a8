package orchestrator

import (
	"maps"
	"slices"

	"github.com/abhisek/notepilot/internal/studypack"
)

// View is the screen the application is on.
type View string

const (
	ViewLanding     View = "LANDING"
	ViewAuth        View = "AUTH"
	ViewThemePicker View = "THEME_PICKER"
	ViewCreate      View = "CREATE"
	ViewPack        View = "VIEW_PACK"
)

// Status is the generation status. It is meaningful in CREATE and
// VIEW_PACK only.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusGenerating Status = "GENERATING"
	StatusSuccess    Status = "SUCCESS"
	StatusError      Status = "ERROR"
)

// Tab is a section of the pack viewer.
type Tab string

const (
	TabSummary    Tab = "summary"
	TabNotes      Tab = "notes"
	TabTerms      Tab = "terms"
	TabQuestions  Tab = "questions"
	TabFlashcards Tab = "flashcards"
	TabQuiz       Tab = "quiz"
	TabMindMap    Tab = "mindmap"
	TabVisuals    Tab = "visuals"
)

// Tabs lists the viewer tabs in display order.
var Tabs = []Tab{TabSummary, TabNotes, TabTerms, TabQuestions, TabFlashcards, TabQuiz, TabMindMap, TabVisuals}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	return slices.Contains(Tabs, t)
}

// VisualsState is the status of the illustration panel.
type VisualsState string

const (
	VisualsIdle       VisualsState = "idle"
	VisualsGenerating VisualsState = "generating"
	VisualsNeedsKey   VisualsState = "needs_key"
	VisualsFailed     VisualsState = "failed"
)

// VisualsFailedMessage is shown after a failed illustration request.
const VisualsFailedMessage = "Generation failed."

// QuizView is the rendering state of the quiz tab.
type QuizView struct {
	Index    int
	Selected int
	Answered bool
	Finished bool
	Result   studypack.QuizResult
}

// Snapshot is an immutable copy of the orchestrator state.
type Snapshot struct {
	View   View
	Status Status
	Tab    Tab

	Identity    *studypack.Identity
	Preferences studypack.Preferences
	ThemeMode   studypack.ThemeMode

	Packs      []studypack.Pack
	ActivePack *studypack.Pack

	// Images are the illustrations of the active pack, newest first.
	Images       []studypack.GeneratedImage
	Visuals      VisualsState
	VisualsError string

	Error string
	Draft studypack.Input

	ExpandedNotes    map[int]bool
	ExpandedTerms    map[int]bool
	FlashcardIndex   int
	FlashcardFlipped bool
	Quiz             QuizView

	ChatOpen     bool
	ChatPinned   string
	ChatMessages []studypack.ChatMessage
	ChatPending  bool
}

// SignedIn reports whether an identity is active.
func (s Snapshot) SignedIn() bool {
	return s.Identity != nil
}

func clonePacks(in []studypack.Pack) []studypack.Pack {
	if in == nil {
		return nil
	}
	out := make([]studypack.Pack, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneImages(in map[string][]studypack.GeneratedImage) map[string][]studypack.GeneratedImage {
	out := make(map[string][]studypack.GeneratedImage, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}

func cloneFlags(in map[int]bool) map[int]bool {
	if in == nil {
		return map[int]bool{}
	}
	return maps.Clone(in)
}
