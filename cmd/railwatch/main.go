package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railwatch/internal/app"
	"railwatch/internal/domain/notification"
	"railwatch/internal/domain/watch"
	"railwatch/internal/infra/config"
	idb "railwatch/internal/infra/database"
	"railwatch/internal/infra/darwin"
	"railwatch/internal/infra/logger"
	"railwatch/internal/infra/memstore"
	"railwatch/internal/infra/redisstore"
	"railwatch/internal/infra/scheduler"
	"railwatch/internal/infra/telegram"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("RailWatch starting...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":     cfg.Environment,
		"history_backend": cfg.HistoryBackend,
		"tick_interval":   cfg.TickInterval,
		"dedup_horizon":   cfg.DedupHorizon,
	}).Info("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Postgres: required for the postgres history backend, and
	// enables watch persistence whenever configured.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := idb.EnsureSchema(ctx, db); err != nil {
			mainLogger.Fatalf("Could not prepare database schema: %v", err)
		}
		mainLogger.Info("Database connection established successfully.")
	}

	var history notification.HistoryStore
	var pruner scheduler.HistoryPruner
	switch cfg.HistoryBackend {
	case config.HistoryBackendPostgres:
		repo := idb.NewPostgresHistoryRepository(db)
		history, pruner = repo, repo
	case config.HistoryBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			mainLogger.Fatalf("Could not connect to redis: %v", err)
		}
		history = redisstore.NewHistoryStore(client, cfg.HistoryRetention)
	default:
		history = memstore.NewHistoryStore(cfg.HistoryRetention)
	}
	mainLogger.WithField("backend", cfg.HistoryBackend).Info("Notification history store initialized.")

	var watchRepo watch.Repository
	if db != nil {
		watchRepo = idb.NewPostgresWatchRepository(db)
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}
	transport := telegram.NewTransport(telegram.NewTelebotAdapter(bot))

	registry := app.NewWatchRegistry()
	adminService := app.NewAdminService(registry, watchRepo, cfg.AdminTelegramID, logger.Component("admin"))
	notifService := app.NewNotificationService(transport, logger.Component("notifications"))

	restored, err := adminService.LoadPersisted(ctx)
	if err != nil {
		mainLogger.Fatalf("Could not restore watch windows: %v", err)
	}
	mainLogger.WithField("count", restored).Info("Watch windows restored.")

	if cfg.WatchesFile != "" {
		seeds, err := config.LoadWatches(cfg.WatchesFile)
		if err != nil {
			mainLogger.Fatalf("Could not load watches file: %v", err)
		}
		added, err := adminService.Seed(ctx, seeds)
		if err != nil {
			mainLogger.Fatalf("Could not seed watch windows: %v", err)
		}
		mainLogger.WithFields(logrus.Fields{"file": cfg.WatchesFile, "added": added}).Info("Watch windows seeded.")
	}

	deduper, err := app.NewDeduper(history, transport, app.DeduperConfig{
		Horizon:     cfg.DedupHorizon,
		CallTimeout: cfg.CallTimeout,
		Priority:    notification.PriorityHigh,
	}, logger.Component("deduper"))
	if err != nil {
		mainLogger.Fatalf("Could not create deduper: %v", err)
	}

	lookup := darwin.NewClient(cfg.DarwinURL, cfg.DarwinToken, &http.Client{Timeout: cfg.CallTimeout})
	orchestrator := app.NewOrchestrator(registry, lookup, deduper, app.OrchestratorConfig{
		CallTimeout:          cfg.CallTimeout,
		MaxConcurrentLookups: cfg.MaxConcurrentLookups,
	}, logger.Component("orchestrator"))

	watchScheduler := scheduler.NewWatchScheduler(orchestrator, logger.Component("scheduler"), scheduler.Options{
		TickInterval: cfg.TickInterval,
		CycleTimeout: cfg.CycleTimeout,
		Location:     cfg.Location(),
		Pruner:       pruner,
		Retention:    cfg.HistoryRetention,
	})
	if err := watchScheduler.Start(); err != nil {
		mainLogger.Fatalf("Could not start scheduler: %v", err)
	}

	botLogger := logger.Component("bot")
	telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, notifService, cfg.AdminTelegramID, botLogger)
	mainLogger.Info("Command handlers registered.")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	watchScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
