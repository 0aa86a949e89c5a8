package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is the accent set of one named theme.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
}

// Palettes maps theme names to their accents.
var Palettes = map[string]Palette{
	"default":  {Primary: lipgloss.Color("#3B82F6"), Secondary: lipgloss.Color("#14B8A6"), Accent: lipgloss.Color("#F97316")},
	"emerald":  {Primary: lipgloss.Color("#10B981"), Secondary: lipgloss.Color("#34D399"), Accent: lipgloss.Color("#FBBF24")},
	"violet":   {Primary: lipgloss.Color("#8B5CF6"), Secondary: lipgloss.Color("#A78BFA"), Accent: lipgloss.Color("#F472B6")},
	"rose":     {Primary: lipgloss.Color("#F43F5E"), Secondary: lipgloss.Color("#FB7185"), Accent: lipgloss.Color("#F59E0B")},
	"amber":    {Primary: lipgloss.Color("#F59E0B"), Secondary: lipgloss.Color("#FCD34D"), Accent: lipgloss.Color("#EF4444")},
	"original": {Primary: lipgloss.Color("#6366F1"), Secondary: lipgloss.Color("#14B8A6"), Accent: lipgloss.Color("#F97316")},
}

// Color palette. Apply swaps the accents and the light/dark base.
var (
	Primary   color.Color = lipgloss.Color("#3B82F6")
	Secondary color.Color = lipgloss.Color("#14B8A6")
	Accent    color.Color = lipgloss.Color("#F97316")
	Success   color.Color = lipgloss.Color("#22C55E")
	Error     color.Color = lipgloss.Color("#F43F5E")
	Text      color.Color = lipgloss.Color("#F8FAFC")
	TextDim   color.Color = lipgloss.Color("#94A3B8")
	BgDark    color.Color = lipgloss.Color("#0F172A")
	BgCard    color.Color = lipgloss.Color("#1E293B")
	Border    color.Color = lipgloss.Color("#334155")
)

// Corners is the border used by cards and frames.
var Corners = lipgloss.RoundedBorder()

// Typography
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style
)

// Layout
var (
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style
)

// States
var (
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Correct    lipgloss.Style
	Incorrect  lipgloss.Style
)

// Components
var (
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
	Banner         lipgloss.Style
)

func init() {
	rebuild()
}

// Apply switches the palette to the named theme, base mode and corner
// shape. Unknown names keep the current accents.
func Apply(name string, dark bool, shape string) {
	if p, ok := Palettes[name]; ok {
		Primary, Secondary, Accent = p.Primary, p.Secondary, p.Accent
	}
	if dark {
		Text = lipgloss.Color("#F8FAFC")
		TextDim = lipgloss.Color("#94A3B8")
		BgDark = lipgloss.Color("#0F172A")
		BgCard = lipgloss.Color("#1E293B")
		Border = lipgloss.Color("#334155")
	} else {
		Text = lipgloss.Color("#0F172A")
		TextDim = lipgloss.Color("#64748B")
		BgDark = lipgloss.Color("#F8FAFC")
		BgCard = lipgloss.Color("#E2E8F0")
		Border = lipgloss.Color("#CBD5E1")
	}
	switch shape {
	case "sharp":
		Corners = lipgloss.NormalBorder()
	case "rounded":
		Corners = lipgloss.ThickBorder()
	default:
		Corners = lipgloss.RoundedBorder()
	}
	rebuild()
}

func rebuild() {
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Header = lipgloss.NewStyle().Background(BgCard).Padding(0, 2)
	Footer = lipgloss.NewStyle().Background(BgCard).Padding(0, 2)
	Card = lipgloss.NewStyle().
		Border(Corners).
		BorderForeground(Border).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)

	ButtonActive = lipgloss.NewStyle().
		Background(Primary).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
		Border(Corners).
		BorderForeground(Border).
		Padding(0, 2)
	Banner = lipgloss.NewStyle().
		Foreground(Error).
		Border(Corners).
		BorderForeground(Error).
		Padding(0, 1)
}
