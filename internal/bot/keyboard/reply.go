// Package keyboard builds the reply keyboards shown to users.
package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/compliment"
)

// Labels for the non-category main menu buttons.
const (
	LabelHome        = "🏠 Home"
	LabelHelp        = "📚 Help"
	LabelBalance     = "💳 Balance"
	LabelFreeCredits = "🎁 Free Credits"
	LabelAudioToggle = "🔊 Audio On/Off"
)

// MainMenu builds the reply keyboard for the bot main menu. The top rows are
// the compliment categories in catalog order.
func MainMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	categories := compliment.Categories()

	categoryRows := make([]telebot.Row, 0, (len(categories)+1)/2)
	for i := 0; i < len(categories); i += 2 {
		row := telebot.Row{markup.Text(categories[i].Label)}
		if i+1 < len(categories) {
			row = append(row, markup.Text(categories[i+1].Label))
		}
		categoryRows = append(categoryRows, row)
	}

	rows := append(categoryRows,
		markup.Row(markup.Text(LabelHome), markup.Text(LabelHelp)),
		markup.Row(markup.Text(LabelBalance)),
		markup.Row(markup.Text(LabelFreeCredits), markup.Text(LabelAudioToggle)),
	)

	markup.Reply(rows...)

	return markup
}
