package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/compliment-hotline/compliment-bot/internal/bot"
	"github.com/compliment-hotline/compliment-bot/internal/compliment"
	"github.com/compliment-hotline/compliment-bot/internal/database"
	"github.com/compliment-hotline/compliment-bot/internal/health"
	"github.com/compliment-hotline/compliment-bot/internal/jobs"
	jobhandlers "github.com/compliment-hotline/compliment-bot/internal/jobs/handlers"
	"github.com/compliment-hotline/compliment-bot/internal/ledger"
	"github.com/compliment-hotline/compliment-bot/internal/lifecycle"
	"github.com/compliment-hotline/compliment-bot/internal/middleware"
	"github.com/compliment-hotline/compliment-bot/internal/repository"
	"github.com/compliment-hotline/compliment-bot/internal/session"
	"github.com/compliment-hotline/compliment-bot/internal/speech"
	"github.com/compliment-hotline/compliment-bot/pkg/config"
	"github.com/compliment-hotline/compliment-bot/pkg/graceful"
	"github.com/compliment-hotline/compliment-bot/pkg/logger"
	pkgredis "github.com/compliment-hotline/compliment-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log, levelVar := logger.New(*cfg)
	slog.SetDefault(log)
	config.WatchLogLevel(v, levelVar, log)

	log.Info("starting compliment hotline bot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.Server.Port),
		slog.String("log_level", cfg.Logger.Level),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Redis backs session preferences and background jobs. Without it the bot
	// still runs: preferences fall back to memory and jobs stay disabled.
	var rdb *pkgredis.Client
	var prefs session.Preferences
	if rdb, err = pkgredis.New(ctx, cfg.Redis); err != nil {
		log.Warn("redis unavailable, using in-memory session preferences", slog.Any("error", err))
		rdb = nil
		prefs = session.NewMemoryPreferences()
	} else {
		prefs = session.NewRedisPreferences(pkgredis.NewMetricsClient(rdb))
	}

	accountRepo := repository.NewAccountRepository(db, log)
	ledgerSvc := ledger.NewService(accountRepo, log)

	generator := compliment.NewGenerator(compliment.GeneratorConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
	}, log)

	var synthesizer *speech.Synthesizer
	if cfg.Speech.APIKey != "" {
		synthesizer = speech.NewSynthesizer(speech.Config{
			APIKey:  cfg.Speech.APIKey,
			BaseURL: cfg.Speech.BaseURL,
			VoiceID: cfg.Speech.VoiceID,
			ModelID: cfg.Speech.ModelID,
		}, log)
	} else {
		log.Info("speech synthesis disabled: no API key configured")
	}

	b, err := bot.New(*cfg, log, bot.Dependencies{
		Ledger:      ledgerSvc,
		Generator:   generator,
		Synthesizer: synthesizer,
		Prefs:       prefs,
	})
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	if rdb != nil {
		checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	checker.AddCheck("generation", generator)

	probes := lifecycle.NewProbes(checker, log)

	httpServer := newHTTPServer(cfg, checker, probes, log)
	server := graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout)
	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped with error", slog.Any("error", err))
		}
	}()

	var worker jobs.Worker
	var scheduler jobs.Scheduler
	if cfg.Jobs.Enabled && rdb != nil {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		worker = jobs.NewWorker(redisOpt, map[string]int{
			jobs.QueueCritical: 6,
			jobs.QueueDefault:  3,
			jobs.QueueLow:      1,
		}, log)
		worker.RegisterHandler(jobs.TaskTypePromoReset, jobhandlers.NewPromoResetHandler(ledgerSvc, log))

		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped with error", slog.Any("error", err))
			}
		}()

		scheduler = jobs.NewScheduler(redisOpt, cfg.Jobs.PromoResetSchedule, log)
		if err := scheduler.RegisterTasks(); err != nil {
			log.Error("failed to register scheduled tasks", slog.Any("error", err))
		} else {
			scheduler.Run()
		}
	}

	go b.Start()
	log.Info("bot started")

	<-ctx.Done()

	shutdown := lifecycle.NewShutdown(cfg.Server.ShutdownTimeout, log)
	shutdown.Register("telegram bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	if worker != nil {
		shutdown.Register("jobs worker", func(context.Context) error {
			worker.Shutdown()
			return nil
		})
	}
	if scheduler != nil {
		shutdown.Register("jobs scheduler", func(context.Context) error {
			scheduler.Shutdown()
			return nil
		})
	}
	if rdb != nil {
		shutdown.Register("redis", func(context.Context) error {
			return rdb.Close()
		})
	}
	shutdown.Register("database", func(context.Context) error {
		return db.Close()
	})

	if err := shutdown.Execute(context.Background()); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("compliment hotline bot stopped")
}

func newHTTPServer(cfg *config.Config, checker *health.Checker, probes lifecycle.HealthChecker, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := logger.Middleware(middleware.New(log)(mux))

	return &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
