// Package compliment generates category-based compliments through an
// OpenAI-compatible chat-completions API, seeded with a small per-category
// inspiration catalog.
package compliment

import (
	"fmt"
	"strings"
)

// Category is one compliment theme selectable from the bot menu.
type Category struct {
	Key   string
	Label string
	Seeds []string
}

// The seed compliments are intentionally generic: they carry no names or
// personal details and only steer the model's tone.
var categories = []Category{
	{
		Key:   "personality",
		Label: "😊 Personality",
		Seeds: []string{
			"Your love for life is contagious. Simply being near you makes others happier. Your presence brings smiles.",
			"You're such a joy to be around. Always ready with a smile and a fun comment.",
			"You have the best laugh and are one of the most genuine people.",
		},
	},
	{
		Key:   "creativity",
		Label: "🎨 Creativity",
		Seeds: []string{
			"Your wit, passion, positivity, and sheer boundless creativity are inspiring.",
			"This compliment hotline is a brilliant example of your creative thinking.",
			"Thank you for your giggle and your unique sense of humor.",
		},
	},
	{
		Key:   "appearance",
		Label: "💃 Physical Appearance",
		Seeds: []string{
			"Your nose crinkles in the most adorable way when you tell a joke!",
			"You radiate light around you; your glow is warm and kind.",
			"Your spontaneous dancing makes souls smile.",
		},
	},
	{
		Key:   "general",
		Label: "🌟 General Awesomeness",
		Seeds: []string{
			"You always know just what to say.",
			"You're always generous and kind to everyone you meet.",
			"I always learn something new when I speak with you.",
		},
	},
}

// Categories returns all selectable compliment categories in menu order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ByKey looks up a category by its internal key.
func ByKey(key string) (Category, bool) {
	for _, category := range categories {
		if category.Key == key {
			return category, true
		}
	}

	return Category{}, false
}

// ByLabel looks up a category by its menu button label.
func ByLabel(label string) (Category, bool) {
	for _, category := range categories {
		if category.Label == label {
			return category, true
		}
	}

	return Category{}, false
}

// Topic returns the human-readable theme used inside the prompt.
func (c Category) Topic() string {
	return strings.ReplaceAll(c.Key, "_", " ")
}

// Prompt assembles the user prompt from the category's seed compliments.
func (c Category) Prompt() string {
	var sb strings.Builder

	sb.WriteString("Using the following compliments as inspiration, write a new heartfelt compliment ")
	fmt.Fprintf(&sb, "focused on %s:\n", c.Topic())

	for _, seed := range c.Seeds {
		fmt.Fprintf(&sb, "- %s\n", seed)
	}

	sb.WriteString("\nNew compliment:")

	return sb.String()
}
