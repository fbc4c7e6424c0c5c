package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage_ShortTextStaysWhole(t *testing.T) {
	chunks := SplitMessage("You are wonderful.", MessageLimit)

	assert.Equal(t, []string{"You are wonderful."}, chunks)
}

func TestSplitMessage_LongTextIsChunked(t *testing.T) {
	text := strings.Repeat("a", MessageLimit*2+5)

	chunks := SplitMessage(text, MessageLimit)

	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], MessageLimit)
	assert.Len(t, chunks[1], MessageLimit)
	assert.Len(t, chunks[2], 5)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitMessage_RuneBoundaries(t *testing.T) {
	text := strings.Repeat("💖", 7)

	chunks := SplitMessage(text, 3)

	assert.Equal(t, []string{"💖💖💖", "💖💖💖", "💖"}, chunks)
	for _, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk, "💖"))
	}
}

func TestSplitMessage_ExactLimit(t *testing.T) {
	text := strings.Repeat("b", MessageLimit)

	chunks := SplitMessage(text, MessageLimit)

	assert.Len(t, chunks, 1)
}
