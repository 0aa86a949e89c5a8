package components

import "github.com/abhisek/notepilot/internal/ui/theme"

// Button renders a form's submit control. Key handling stays with the
// owning screen, which decides what Enter means for its focus order.
type Button struct {
	Label   string
	Focused bool
	// Disabled, when set, is shown beside the button as the reason it
	// cannot be pressed.
	Disabled string
}

// View renders the button.
func (b Button) View() string {
	if b.Disabled != "" {
		return theme.ButtonInactive.Render("  "+b.Label+" ") + "  " + theme.Hint.Render(b.Disabled)
	}
	if b.Focused {
		return theme.ButtonActive.Render("  ▸ " + b.Label + " ")
	}
	return theme.ButtonInactive.Render("  " + b.Label + " ")
}
