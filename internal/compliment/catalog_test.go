package compliment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_StableMenuOrder(t *testing.T) {
	labels := make([]string, 0)
	for _, category := range Categories() {
		labels = append(labels, category.Label)
	}

	assert.Equal(t, []string{
		"😊 Personality",
		"🎨 Creativity",
		"💃 Physical Appearance",
		"🌟 General Awesomeness",
	}, labels)
}

func TestByLabel(t *testing.T) {
	category, ok := ByLabel("🎨 Creativity")
	require.True(t, ok)
	assert.Equal(t, "creativity", category.Key)

	_, ok = ByLabel("🏠 Home")
	assert.False(t, ok)
}

func TestByKey(t *testing.T) {
	category, ok := ByKey("appearance")
	require.True(t, ok)
	assert.Equal(t, "💃 Physical Appearance", category.Label)

	_, ok = ByKey("missing")
	assert.False(t, ok)
}

func TestPrompt_ContainsTopicAndSeeds(t *testing.T) {
	category, ok := ByKey("personality")
	require.True(t, ok)

	prompt := category.Prompt()

	assert.Contains(t, prompt, "focused on personality")
	for _, seed := range category.Seeds {
		assert.Contains(t, prompt, "- "+seed)
	}
	assert.True(t, strings.HasSuffix(prompt, "New compliment:"))
}
