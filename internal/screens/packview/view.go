package packview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

func (p *PackScreen) View(width, height int) string {
	pk := p.state.ActivePack
	if pk == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No pack is open."))
	}

	mainWidth := width
	var chat string
	if p.state.ChatOpen && width >= chatWidth+40 {
		mainWidth = width - chatWidth - 1
		chat = p.renderChat(chatWidth, height-2)
	}

	tabs := p.renderTabBar(mainWidth)
	meta := lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("  %s · %s · %s", pk.Meta.Subject, pk.Meta.Grade, pk.Meta.Language))

	bodyHeight := max(height-lipgloss.Height(tabs)-3, 1)
	body, cursorLine := p.renderTab(mainWidth - 4)
	body = p.window(body, cursorLine, bodyHeight)

	if p.errMsg != "" && chat == "" {
		body += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(p.errMsg)
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		meta,
		"",
		lipgloss.NewStyle().Padding(0, 2).Width(mainWidth).Render(body),
	)
	if chat == "" {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, " ", chat)
}

func (p *PackScreen) renderTabBar(width int) string {
	parts := make([]string, 0, len(orchestrator.Tabs))
	for i, t := range orchestrator.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tabLabels[t])
		if t == p.state.Tab {
			parts = append(parts, theme.ButtonActive.Padding(0, 1).Render(label))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 1).Render(label))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, " "))
}

// window clips body to height lines, following the cursor on list tabs
// and the manual scroll offset elsewhere.
func (p *PackScreen) window(body string, cursorLine, height int) string {
	ls := strings.Split(body, "\n")
	if len(ls) <= height {
		p.scroll = 0
		return body
	}

	if p.itemCount() > 0 && p.state.Tab != orchestrator.TabVisuals && p.state.Tab != orchestrator.TabQuiz {
		if cursorLine < p.scroll {
			p.scroll = cursorLine
		}
		if cursorLine >= p.scroll+height {
			p.scroll = cursorLine - height + 1
		}
	}
	p.scroll = min(p.scroll, len(ls)-height)

	out := ls[p.scroll : p.scroll+height]
	if p.scroll+height < len(ls) {
		out[len(out)-1] = theme.Hint.Render(fmt.Sprintf("  ↓ %d more lines (PgDn)", len(ls)-p.scroll-height+1))
	}
	return strings.Join(out, "\n")
}
