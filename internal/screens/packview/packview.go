// Package packview is the tabbed study pack viewer with its chat panel and
// illustration tab.
package packview

import (
	"context"
	"strconv"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/router"
	"github.com/abhisek/notepilot/internal/screen"
	"github.com/abhisek/notepilot/internal/screens/history"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/components"
	"github.com/abhisek/notepilot/internal/ui/layout"
)

// chatWidth is the width of the chat panel when open.
const chatWidth = 44

type focusArea int

const (
	focusContent focusArea = iota
	focusChat
	focusPrompt
	focusKey
)

var tabLabels = map[orchestrator.Tab]string{
	orchestrator.TabSummary:    "Summary",
	orchestrator.TabNotes:      "Notes",
	orchestrator.TabTerms:      "Key terms",
	orchestrator.TabQuestions:  "Questions",
	orchestrator.TabFlashcards: "Flashcards",
	orchestrator.TabQuiz:       "Quiz",
	orchestrator.TabMindMap:    "Mind map",
	orchestrator.TabVisuals:    "Visuals",
}

// PackScreen shows the active pack.
type PackScreen struct {
	env   screen.Env
	state orchestrator.Snapshot

	focus  focusArea
	cursor map[orchestrator.Tab]int
	scroll int

	chatInput   components.TextInput
	chatSending string

	promptInput components.TextInput
	keyInput    components.TextInput
	sizeIdx     int
	drawing     bool
	notice      string

	spinner spinner.Model
	errMsg  string

	// rendered caches glamour output keyed by source, width and mode.
	rendered map[string]string
}

var _ screen.Screen = (*PackScreen)(nil)
var _ screen.KeyHintProvider = (*PackScreen)(nil)
var _ screen.InputCapturer = (*PackScreen)(nil)

// New creates the viewer for the active pack in s.
func New(env screen.Env, s orchestrator.Snapshot) *PackScreen {
	p := &PackScreen{
		env:         env,
		state:       s,
		cursor:      map[orchestrator.Tab]int{},
		chatInput:   components.NewTextInput("", "Ask a doubt...", 500),
		promptInput: components.NewTextInput("Prompt", "", 300),
		keyInput:    components.NewSecretInput("Gemini API key", "paste a key with image access"),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		rendered:    map[string]string{},
	}
	if s.ActivePack != nil {
		p.promptInput.Model.Placeholder = studypack.VisualsPrompt(s.ActivePack.Meta)
	}
	if s.ChatOpen {
		p.focus = focusChat
	}
	return p
}

func (p *PackScreen) Init() tea.Cmd {
	if p.focus == focusChat {
		return p.chatInput.Focus()
	}
	return nil
}

func (p *PackScreen) Title() string {
	if p.state.ActivePack == nil {
		return ""
	}
	return p.state.ActivePack.Meta.ChapterTitle
}

func (p *PackScreen) CapturingInput() bool {
	return p.focus != focusContent
}

func (p *PackScreen) KeyHints() []layout.KeyHint {
	switch p.focus {
	case focusChat:
		return []layout.KeyHint{{Key: "Enter", Description: "Send"}, {Key: "Esc", Description: "Close chat"}}
	case focusPrompt, focusKey:
		return []layout.KeyHint{{Key: "Enter", Description: "Confirm"}, {Key: "Esc", Description: "Done"}}
	}
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next tab"}}
	hints = append(hints, tabHints(p.state.Tab)...)
	return append(hints,
		layout.KeyHint{Key: "c", Description: "Chat"},
		layout.KeyHint{Key: "Ctrl+N", Description: "New"},
		layout.KeyHint{Key: "Ctrl+O", Description: "My packs"},
	)
}

func (p *PackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		return p, p.applyState(msg)

	case spinner.TickMsg:
		if !p.drawing && p.chatSending == "" {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyPressMsg:
		switch p.focus {
		case focusChat:
			return p, p.updateChat(msg)
		case focusPrompt, focusKey:
			return p, p.updateVisualsInput(msg)
		}
		return p, p.updateContent(msg)
	}
	return p, nil
}

func (p *PackScreen) applyState(msg screen.StateMsg) tea.Cmd {
	prevTab := p.state.Tab
	prevQuiz := p.state.Quiz.Index
	p.state = msg.State
	p.chatSending = ""
	p.drawing = false
	p.errMsg = ""
	if msg.Err != nil {
		p.errMsg = msg.Err.Error()
	}
	if msg.State.Tab != prevTab {
		p.scroll = 0
	}
	if msg.State.Quiz.Index != prevQuiz {
		p.cursor[orchestrator.TabQuiz] = 0
	}
	if !msg.State.ChatOpen && p.focus == focusChat {
		p.focus = focusContent
		p.chatInput.Blur()
	}
	if msg.State.Visuals != orchestrator.VisualsNeedsKey && p.focus == focusKey {
		p.focus = focusContent
		p.keyInput.Blur()
		p.keyInput.Reset()
	}
	return nil
}

func (p *PackScreen) do(fn func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error)) tea.Cmd {
	return p.env.Do(fn)
}

func (p *PackScreen) selectTab(t orchestrator.Tab) tea.Cmd {
	return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return o.SelectTab(t)
	})
}

func (p *PackScreen) tabIndex() int {
	for i, t := range orchestrator.Tabs {
		if t == p.state.Tab {
			return i
		}
	}
	return 0
}

// updateContent handles keys when no input field has focus.
func (p *PackScreen) updateContent(msg tea.KeyPressMsg) tea.Cmd {
	n := len(orchestrator.Tabs)
	key := msg.String()
	switch key {
	case "tab":
		return p.selectTab(orchestrator.Tabs[(p.tabIndex()+1)%n])
	case "shift+tab":
		return p.selectTab(orchestrator.Tabs[(p.tabIndex()+n-1)%n])
	case "1", "2", "3", "4", "5", "6", "7", "8":
		i, _ := strconv.Atoi(key)
		return p.selectTab(orchestrator.Tabs[i-1])
	case "pgdown":
		p.scroll += 10
		return nil
	case "pgup":
		p.scroll = max(p.scroll-10, 0)
		return nil
	case "c":
		opening := !p.state.ChatOpen
		cmd := p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
			return o.ToggleChat(), nil
		})
		if opening {
			p.focus = focusChat
			return tea.Batch(cmd, p.chatInput.Focus())
		}
		return cmd
	case "a":
		if fragment := p.askAIFragment(); fragment != "" {
			p.focus = focusChat
			return tea.Batch(p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
				return o.AskAI(fragment), nil
			}), p.chatInput.Focus())
		}
		return nil
	case "ctrl+n":
		return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
			return o.CreateNew()
		})
	case "ctrl+o":
		hs := history.New(p.env, p.state)
		return func() tea.Msg { return router.PushScreenMsg{Screen: hs} }
	}
	return p.updateTab(msg)
}

// moveCursor shifts the cursor of the current tab within [0, n).
func (p *PackScreen) moveCursor(delta, n int) {
	if n == 0 {
		return
	}
	t := p.state.Tab
	p.cursor[t] = min(max(p.cursor[t]+delta, 0), n-1)
}
