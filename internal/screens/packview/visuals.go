package packview

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/ui/theme"
)

func (p *PackScreen) size() studypack.ImageSize {
	return studypack.ImageSizes[p.sizeIdx%len(studypack.ImageSizes)]
}

// updateVisuals handles the visuals tab keys while no field is focused.
func (p *PackScreen) updateVisuals(key string) tea.Cmd {
	switch key {
	case "p":
		p.focus = focusPrompt
		return p.promptInput.Focus()
	case "s":
		p.sizeIdx = (p.sizeIdx + 1) % len(studypack.ImageSizes)
	case "k":
		if p.state.Visuals == orchestrator.VisualsNeedsKey {
			p.focus = focusKey
			return p.keyInput.Focus()
		}
	case "g", "enter":
		return p.generate()
	case "w":
		return p.saveImage()
	}
	return nil
}

// updateVisualsInput routes keys to the prompt or key field.
func (p *PackScreen) updateVisualsInput(msg tea.KeyPressMsg) tea.Cmd {
	field := &p.promptInput
	if p.focus == focusKey {
		field = &p.keyInput
	}
	switch msg.String() {
	case "esc":
		field.Blur()
		p.focus = focusContent
		return nil
	case "enter":
		field.Blur()
		p.focus = focusContent
		if field == &p.keyInput {
			key := p.keyInput.Value()
			p.keyInput.Reset()
			return p.do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
				return o.ProvideImageCredential(ctx, key)
			})
		}
		return p.generate()
	}
	var cmd tea.Cmd
	*field, cmd = field.Update(msg)
	return cmd
}

func (p *PackScreen) generate() tea.Cmd {
	if p.drawing {
		return nil
	}
	p.drawing = true
	p.notice = ""
	prompt, size := p.promptInput.Value(), p.size()
	return tea.Batch(p.do(func(ctx context.Context, o *orchestrator.Orchestrator) (orchestrator.Snapshot, error) {
		return o.GenerateImage(ctx, prompt, size)
	}), p.spinner.Tick)
}

// saveImage writes the selected illustration to the working directory.
func (p *PackScreen) saveImage() tea.Cmd {
	i := p.cursor[orchestrator.TabVisuals]
	if p.state.ActivePack == nil || i >= len(p.state.Images) {
		return nil
	}
	img := p.state.Images[i]
	name := img.FileName(p.state.ActivePack.ID)
	b, err := img.Bytes()
	if err == nil {
		err = os.WriteFile(name, b, 0o644)
	}
	if err != nil {
		p.notice = "Could not save image: " + err.Error()
		p.env.Log.Warn("save image failed", "image_id", img.ID, "error", err)
		return nil
	}
	p.notice = "Saved " + name
	return nil
}

func (p *PackScreen) renderVisuals(width int) string {
	var b strings.Builder
	inner := min(width-4, 80)

	b.WriteString(p.promptInput.View())
	b.WriteString("\n\n")

	sizes := make([]string, len(studypack.ImageSizes))
	for i, s := range studypack.ImageSizes {
		if i == p.sizeIdx {
			sizes[i] = theme.Selected.Render("[" + string(s) + "]")
		} else {
			sizes[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(" " + string(s) + " ")
		}
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Size  ") + strings.Join(sizes, " "))
	b.WriteString("\n\n")

	switch {
	case p.drawing:
		b.WriteString(p.spinner.View() + " " + theme.Hint.Render("Drawing your illustration..."))
	case p.state.Visuals == orchestrator.VisualsNeedsKey:
		msg := "Image generation needs a Gemini API key with image access. Press k to enter one."
		if p.focus == focusKey {
			msg = "Paste the key and press Enter. It is kept for this session only."
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Width(inner).Render(msg))
		b.WriteString("\n\n")
		b.WriteString(p.keyInput.View())
	case p.state.Visuals == orchestrator.VisualsFailed:
		b.WriteString(theme.Banner.Render(p.state.VisualsError))
	}
	if p.notice != "" {
		b.WriteString("\n" + theme.Hint.Render(p.notice))
	}
	b.WriteString("\n\n")

	if len(p.state.Images) == 0 {
		b.WriteString(theme.Hint.Render("No illustrations yet. Press g to draw one."))
		return b.String()
	}

	b.WriteString(theme.Selected.Render(fmt.Sprintf("Illustrations (%d)", len(p.state.Images))))
	b.WriteString("\n")
	c := p.cursor[orchestrator.TabVisuals]
	for i, img := range p.state.Images {
		when := time.UnixMilli(img.CreatedAt).Local().Format("Jan 02 15:04")
		line := fmt.Sprintf("%s  %-3s  %s", when, img.Size, truncate(img.Prompt, inner-24))
		style := theme.Unselected
		if i == c {
			style = theme.Selected
		}
		b.WriteString(pointer(i == c) + style.Render(line) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
