package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/bot/keyboard"
)

const helpText = "📚 How it works\n\n" +
	"Pick a category and I'll write you a fresh compliment:\n" +
	"😊 Personality · 🎨 Creativity · 💃 Physical Appearance · 🌟 General Awesomeness\n\n" +
	"Every compliment uses one free interaction; once those run out, each one costs a credit.\n\n" +
	"💳 Balance — see your remaining free interactions and credits\n" +
	"🎁 Free Credits — refresh your free interactions\n" +
	"🔊 Audio On/Off — hear your compliments as voice messages\n" +
	"🏠 Home — back to the main menu"

// NewHelpHandler returns a handler for the /help command and help button.
func NewHelpHandler() Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		return c.Send(helpText, keyboard.MainMenu())
	}
}
