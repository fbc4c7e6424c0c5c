package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// MessageLimit is the maximum number of characters sent in a single Telegram
// message before the reply is split.
const MessageLimit = 4000

// SplitMessage breaks text into rune-safe chunks of at most limit characters.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/limit+1)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}

func sendChunked(c telebot.Context, text string, options ...interface{}) error {
	for _, chunk := range SplitMessage(text, MessageLimit) {
		if err := c.Send(chunk, options...); err != nil {
			return err
		}
	}

	return nil
}
