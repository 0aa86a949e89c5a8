package landing

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/notepilot/internal/ui/theme"
)

const bannerArt = `
 _   _       _            _ _       _
| \ | | ___ | |_ ___ _ __(_) | ___ | |_
|  \| |/ _ \| __/ _ \ '_ \| | |/ _ \| __|
| |\  | (_) | ||  __/ |_) | | | (_) | |_
|_| \_|\___/ \__\___| .__/|_|_|\___/ \__|
                    |_|`

const bannerCompact = "N O T E P I L O T"

// RenderBanner returns the NOTEPILOT banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 44 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 44 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
