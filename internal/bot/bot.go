// Package bot wires the Telegram transport to the application services.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/compliment-hotline/compliment-bot/internal/bot/handlers"
	"github.com/compliment-hotline/compliment-bot/internal/bot/keyboard"
	"github.com/compliment-hotline/compliment-bot/internal/compliment"
	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/internal/ledger"
	"github.com/compliment-hotline/compliment-bot/internal/middleware"
	"github.com/compliment-hotline/compliment-bot/internal/session"
	"github.com/compliment-hotline/compliment-bot/internal/speech"
	"github.com/compliment-hotline/compliment-bot/pkg/config"
)

// Dependencies holds the application services the bot handlers need.
type Dependencies struct {
	Ledger      *ledger.Service
	Generator   *compliment.Generator
	Synthesizer *speech.Synthesizer
	Prefs       session.Preferences
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	router     *Router
	errHandler *errors.Handler
	deps       Dependencies
}

// New builds a telegram bot instance configured according to the application settings.
func New(cfg config.Config, log *slog.Logger, deps Dependencies) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		router:     NewRouter(log),
		errHandler: errors.NewHandler(log, cfg.Sentry.Enabled),
		deps:       deps,
	}

	b.setupRouter()
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	freeAllowance := b.cfg.Ledger.FreeAllowance
	creditCost := b.cfg.Ledger.CreditCost

	startHandler := handlers.NewStartHandler(b.deps.Ledger, freeAllowance, b.log)
	helpHandler := handlers.NewHelpHandler()
	balanceHandler := handlers.NewBalanceHandler(b.deps.Ledger, freeAllowance, b.log)
	resetHandler := handlers.NewResetHandler(b.deps.Ledger, freeAllowance, b.log)
	audioHandler := handlers.NewAudioToggleHandler(b.deps.Prefs, b.log)
	menuPromptHandler := handlers.NewMenuPromptHandler()

	b.router.RegisterCommand(CommandStart, startHandler)
	b.router.RegisterCommand(CommandHelp, helpHandler)
	b.router.RegisterCommand(CommandBalance, balanceHandler)
	b.router.RegisterCommand(CommandReset, resetHandler)
	b.router.RegisterCommand(CommandAudio, audioHandler)

	b.router.RegisterMenuText(keyboard.LabelHome, startHandler)
	b.router.RegisterMenuText(keyboard.LabelHelp, helpHandler)
	b.router.RegisterMenuText(keyboard.LabelBalance, balanceHandler)
	b.router.RegisterMenuText(keyboard.LabelFreeCredits, resetHandler)
	b.router.RegisterMenuText(keyboard.LabelAudioToggle, audioHandler)

	for _, category := range compliment.Categories() {
		b.router.RegisterMenuText(category.Label, handlers.NewComplimentHandler(category, handlers.ComplimentDeps{
			Ledger:        b.deps.Ledger,
			Generator:     b.deps.Generator,
			Synthesizer:   b.deps.Synthesizer,
			Prefs:         b.deps.Prefs,
			FreeAllowance: freeAllowance,
			CreditCost:    creditCost,
			Log:           b.log,
		}))
	}

	b.router.SetDefault(menuPromptHandler)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
}
