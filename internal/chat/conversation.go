// Package chat keeps the study assistant transcript and its pinned context.
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/studypack"
)

const (
	// PinnedGreeting opens a conversation about a pinned fragment.
	PinnedGreeting = "I see you have a doubt about this specific part. How can I help clarify it for you?"

	// EmptyGreeting is shown while the transcript is empty.
	EmptyGreeting = "Hello! I'm your AI tutor. Ask me anything about your study materials."

	// FailureReply replaces the answer when the assistant call fails.
	FailureReply = "Sorry, I'm having trouble connecting right now."
)

var (
	ErrBusy         = errors.New("a reply is still pending")
	ErrEmptyMessage = errors.New("message is empty")
)

// QuickAction is a canned follow-up question.
type QuickAction struct {
	Label  string
	Prompt string
}

// QuickActions lists the canned follow-ups in display order.
var QuickActions = []QuickAction{
	{Label: "Explain like I'm 5", Prompt: "Can you explain this like I'm 5 years old?"},
	{Label: "Simplify", Prompt: "Please simplify this explanation for me."},
	{Label: "Give example", Prompt: "Could you provide a real-world example of this?"},
}

// Responder answers one chat turn. *gateway.Gateway satisfies it.
type Responder interface {
	Chat(ctx context.Context, message, pinned string, history []studypack.ChatMessage) (string, error)
}

// Conversation is a transcript plus the context it is pinned to. It is safe
// for concurrent use; at most one turn is pending at a time.
type Conversation struct {
	responder Responder
	log       *logger.Logger

	mu       sync.Mutex
	id       string
	pinned   string
	messages []studypack.ChatMessage
	pending  bool
}

// New creates an empty, unpinned conversation.
func New(r Responder, log *logger.Logger) *Conversation {
	return &Conversation{responder: r, log: log, id: newID()}
}

func newID() string {
	id, err := gonanoid.New()
	if err != nil {
		return "chat"
	}
	return id
}

// Pin attaches a fragment and restarts the transcript with the greeting.
// A blank fragment unpins and clears.
func (c *Conversation) Pin(fragment string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.id = newID()
	c.pinned = strings.TrimSpace(fragment)
	c.messages = nil
	if c.pinned != "" {
		c.messages = []studypack.ChatMessage{{Role: studypack.ChatRoleModel, Text: PinnedGreeting}}
	}
}

// Send posts text and waits for the reply. A failed call appends
// FailureReply and still returns a nil error; the transcript is kept.
func (c *Conversation) Send(ctx context.Context, text string) (studypack.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return studypack.ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return studypack.ChatMessage{}, ErrBusy
	}
	c.pending = true
	id, pinned := c.id, c.pinned
	history := slices.Clone(c.messages)
	c.messages = append(c.messages, studypack.ChatMessage{Role: studypack.ChatRoleUser, Text: text})
	c.mu.Unlock()

	reply := studypack.ChatMessage{Role: studypack.ChatRoleModel}
	answer, err := c.responder.Chat(ctx, text, pinned, history)
	if err != nil {
		c.log.Warn("chat turn failed", "conversation", id, "error", err)
		reply.Text = FailureReply
	} else {
		reply.Text = answer
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	// Pin during the call started a new conversation; drop the stale reply.
	if c.id == id {
		c.messages = append(c.messages, reply)
	}
	return reply, nil
}

// ID identifies the current transcript. Pin assigns a new one.
func (c *Conversation) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Pinned returns the pinned context, empty when none.
func (c *Conversation) Pinned() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []studypack.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Pending reports whether a reply is outstanding.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Reset unpins and clears the transcript.
func (c *Conversation) Reset() {
	c.Pin("")
}
