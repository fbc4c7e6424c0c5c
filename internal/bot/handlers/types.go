package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands and menu selections.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
