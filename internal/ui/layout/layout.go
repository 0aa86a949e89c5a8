package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(fmt.Sprintf(
			"Notepilot needs at least %d x %d.\n\nCurrent size: %d x %d",
			MinWidth, MinHeight, width, height,
		)))
}

// bar draws a full-width bordered strip.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(theme.Corners).
		BorderForeground(theme.Border).
		Render(content)
}

// spread places left and right at the edges of width and centers mid
// between them, keeping at least one space on each side.
func spread(left, mid, right string, width int) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	gapL := max((width-mw)/2-lw, 1)
	gapR := max(width-lw-gapL-mw-rw, 1)
	return left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
}

// RenderHeader renders the title bar. user is the signed-in display name,
// empty when signed out.
func RenderHeader(title, user string, dark bool, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Notepilot")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	mode := "☀ light"
	if dark {
		mode = "☾ dark"
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(mode)
	if user != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render("● "+user) + "   " + right
	}

	return bar(spread(brand, center, right, max(width-4, 0)), width)
}

// RenderFooter renders key hints, dropping the leading ones when they do
// not fit so the global keys at the end stay visible.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	content := "  " + strings.Join(parts, "   ")
	for len(parts) > 1 && lipgloss.Width(content) > width-4 {
		parts = parts[1:]
		content = "  " + strings.Join(parts, "   ")
	}
	return bar(content, width)
}

// RenderFrame stacks header, content and footer, sizing content to fill
// the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(h).Render(content),
		footer,
	)
}
