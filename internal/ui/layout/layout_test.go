package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(120, 23))
	assert.False(t, IsTooSmall(80, 24))
}

func TestFooterKeepsTrailingHints(t *testing.T) {
	hints := []KeyHint{{Key: "F1", Description: "leading"}}
	for i := range 20 {
		hints = append(hints, KeyHint{Key: strings.Repeat("x", i+1), Description: "filler"})
	}
	hints = append(hints, KeyHint{Key: "Ctrl+C", Description: "Quit"})

	out := RenderFooter(hints, 80)
	assert.Contains(t, out, "Quit")
	assert.NotContains(t, out, "leading")
}

func TestHeaderShowsUserAndMode(t *testing.T) {
	out := RenderHeader("Create", "Asha", true, 100)
	assert.Contains(t, out, "Notepilot")
	assert.Contains(t, out, "Asha")
	assert.Contains(t, out, "dark")

	out = RenderHeader("Welcome", "", false, 100)
	assert.NotContains(t, out, "●")
	assert.Contains(t, out, "light")
}
