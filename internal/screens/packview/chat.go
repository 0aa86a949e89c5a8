package packview

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

// updateChat handles keys while the chat input has focus.
func (p *PackScreen) updateChat(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.chatInput.Blur()
		p.focus = focusContent
		return p.do(func(_ context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
			return o.ToggleChat(), nil
		})
	case "tab":
		// Leave the panel open and return to the pack.
		p.chatInput.Blur()
		p.focus = focusContent
		return nil
	case "enter":
		text := strings.TrimSpace(p.chatInput.Value())
		if text == "" || p.chatSending != "" {
			return nil
		}
		p.chatInput.Reset()
		p.chatSending = text
		return tea.Batch(p.do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
			return o.SendChat(ctx, text)
		}), p.spinner.Tick)
	}
	var cmd tea.Cmd
	p.chatInput, cmd = p.chatInput.Update(msg)
	return cmd
}

// renderChat draws the chat panel at the given size.
func (p *PackScreen) renderChat(width, height int) string {
	inner := width - 4
	var rows []string

	if p.state.ChatPinned != "" {
		rows = append(rows,
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Asking about"),
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Width(inner).
				Render(truncate(p.state.ChatPinned, inner*2)),
			"")
	}

	msgs := p.state.ChatMessages
	if p.chatSending != "" {
		msgs = append(msgs, studypack.ChatMessage{Role: studypack.ChatRoleUser, Text: p.chatSending})
	}
	for _, m := range msgs {
		if m.Role == studypack.ChatRoleUser {
			rows = append(rows,
				lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("You"),
				lipgloss.NewStyle().Foreground(theme.Text).Width(inner).Render(m.Text),
				"")
			continue
		}
		rows = append(rows,
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Tutor"),
			p.markdown(m.Text, inner),
			"")
	}
	if p.chatSending != "" {
		rows = append(rows, p.spinner.View()+" "+theme.Hint.Render("Thinking..."))
	}
	if p.errMsg != "" {
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.Error).Width(inner).Render(p.errMsg))
	}

	input := p.chatInput.View()
	body := tail(strings.Join(rows, "\n"), height-lipgloss.Height(input)-3)

	return theme.Card.
		Width(width).
		Height(height).
		BorderForeground(theme.Primary).
		Render(body + "\n\n" + input)
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	ls := strings.Split(s, "\n")
	if len(ls) > n {
		ls = ls[len(ls)-n:]
	}
	return strings.Join(ls, "\n")
}
