package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuSkipsDisabledItems(t *testing.T) {
	ran := ""
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "First", Action: func() tea.Cmd { ran = "first"; return nil }},
		{Label: "Off too", Disabled: true},
		{Label: "Last", Action: func() tea.Cmd { ran = "last"; return nil }},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.Selected, "no enabled item above")

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "last", ran)
}

func TestMenuShowsSelectedDescription(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "A", Description: "about a"},
		{Label: "B", Description: "about b"},
	})
	out := m.View()
	assert.Contains(t, out, "about a")
	assert.NotContains(t, out, "about b")
}

func TestMultiChoice(t *testing.T) {
	mc := NewMultiChoice("2+2?", []string{"3", "4", "5"}, 1)
	mc.Move(-1)
	assert.Zero(t, mc.Cursor)
	mc.Move(5)
	assert.Equal(t, 2, mc.Cursor)

	mc.Answered, mc.ChosenIndex = true, 2
	mc.Move(-1)
	assert.Equal(t, 2, mc.Cursor, "cursor is frozen once answered")
	assert.False(t, mc.IsCorrect())

	mc.ChosenIndex = 1
	assert.True(t, mc.IsCorrect())
	assert.Contains(t, mc.View(60), "✓")
}

func TestProgressBarPercent(t *testing.T) {
	assert.Zero(t, NewProgressBar("", 3, 0, 40).Percent())
	assert.InDelta(t, 0.5, NewProgressBar("", 5, 10, 40).Percent(), 1e-9)
	assert.Equal(t, 1.0, NewProgressBar("", 12, 10, 40).Percent())
	require.Contains(t, NewProgressBar("Cards", 2, 8, 40).View(), "2/8")
}

func TestButtonDisabledReason(t *testing.T) {
	assert.Contains(t, Button{Label: "Go", Disabled: "need text"}.View(), "need text")
	assert.Contains(t, Button{Label: "Go", Focused: true}.View(), "▸")
}
