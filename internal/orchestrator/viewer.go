package orchestrator

import (
	"context"
	"fmt"

	"github.com/abhisek/notepilot/internal/studypack"
)

// withPack runs fn under the lock when a pack is open.
func (o *Orchestrator) withPack(fn func(p *studypack.Pack) error) (Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.view != ViewPack || o.active == nil {
		return o.snapshotLocked(), ErrNoActivePack
	}
	if err := fn(o.active); err != nil {
		return o.snapshotLocked(), err
	}
	return o.snapshotLocked(), nil
}

// SelectTab switches the viewer tab.
func (o *Orchestrator) SelectTab(tab Tab) (Snapshot, error) {
	return o.withPack(func(*studypack.Pack) error {
		if !tab.Valid() {
			return fmt.Errorf("unknown tab %q", tab)
		}
		o.tab = tab
		return nil
	})
}

// ToggleNote expands or collapses note section i.
func (o *Orchestrator) ToggleNote(i int) (Snapshot, error) {
	return o.withPack(func(p *studypack.Pack) error {
		if i < 0 || i >= len(p.Notes) {
			return fmt.Errorf("note %d out of range", i)
		}
		o.expandedNotes[i] = !o.expandedNotes[i]
		return nil
	})
}

// ToggleTerm expands or collapses key term i.
func (o *Orchestrator) ToggleTerm(i int) (Snapshot, error) {
	return o.withPack(func(p *studypack.Pack) error {
		if i < 0 || i >= len(p.KeyTerms) {
			return fmt.Errorf("term %d out of range", i)
		}
		o.expandedTerms[i] = !o.expandedTerms[i]
		return nil
	})
}

// SetFlashcard shows card i, clamped to the deck, face down.
func (o *Orchestrator) SetFlashcard(i int) (Snapshot, error) {
	return o.withPack(func(p *studypack.Pack) error {
		n := len(p.Flashcards)
		switch {
		case n == 0:
			i = 0
		case i < 0:
			i = 0
		case i >= n:
			i = n - 1
		}
		o.flashcard = i
		o.flipped = false
		return nil
	})
}

// FlipFlashcard turns the current card over.
func (o *Orchestrator) FlipFlashcard() (Snapshot, error) {
	return o.withPack(func(*studypack.Pack) error {
		o.flipped = !o.flipped
		return nil
	})
}

// AnswerQuiz selects an option for the current quiz question. Answering the
// same question twice is ignored.
func (o *Orchestrator) AnswerQuiz(option int) (Snapshot, error) {
	return o.withPack(func(*studypack.Pack) error {
		o.quiz.Answer(option)
		return nil
	})
}

// NextQuizQuestion advances the quiz, showing results after the last one.
func (o *Orchestrator) NextQuizQuestion() (Snapshot, error) {
	return o.withPack(func(*studypack.Pack) error {
		o.quiz.Next()
		return nil
	})
}

// RestartQuiz starts the quiz over.
func (o *Orchestrator) RestartQuiz() (Snapshot, error) {
	return o.withPack(func(*studypack.Pack) error {
		o.quiz.Restart()
		return nil
	})
}

// SetDraft keeps the input form contents across views.
func (o *Orchestrator) SetDraft(in studypack.Input) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft = in
	return o.snapshotLocked()
}

// AskAI pins fragment to the chat assistant and opens it.
func (o *Orchestrator) AskAI(fragment string) Snapshot {
	o.chat.Pin(fragment)
	o.mu.Lock()
	o.chatOpen = true
	o.mu.Unlock()
	return o.Snapshot()
}

// ToggleChat shows or hides the chat panel. The transcript is kept.
func (o *Orchestrator) ToggleChat() Snapshot {
	o.mu.Lock()
	o.chatOpen = !o.chatOpen
	o.mu.Unlock()
	return o.Snapshot()
}

// SendChat posts a message to the assistant and waits for the reply.
func (o *Orchestrator) SendChat(ctx context.Context, text string) (Snapshot, error) {
	if _, err := o.chat.Send(ctx, text); err != nil {
		return o.Snapshot(), err
	}
	return o.Snapshot(), nil
}

// ChatPending reports whether an assistant reply is outstanding.
func (o *Orchestrator) ChatPending() bool {
	return o.chat.Pending()
}
