package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainMenu_Layout(t *testing.T) {
	markup := MainMenu()

	require.NotNil(t, markup)
	assert.True(t, markup.ResizeKeyboard)
	assert.False(t, markup.OneTimeKeyboard)

	rows := markup.ReplyKeyboard
	require.Len(t, rows, 5)

	labels := func(rowIdx int) []string {
		out := make([]string, 0, len(rows[rowIdx]))
		for _, btn := range rows[rowIdx] {
			out = append(out, btn.Text)
		}
		return out
	}

	assert.Equal(t, []string{"😊 Personality", "🎨 Creativity"}, labels(0))
	assert.Equal(t, []string{"💃 Physical Appearance", "🌟 General Awesomeness"}, labels(1))
	assert.Equal(t, []string{LabelHome, LabelHelp}, labels(2))
	assert.Equal(t, []string{LabelBalance}, labels(3))
	assert.Equal(t, []string{LabelFreeCredits, LabelAudioToggle}, labels(4))
}
