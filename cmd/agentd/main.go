package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/nakshatra-7/Email-Agent/internal/actions"
	"github.com/nakshatra-7/Email-Agent/internal/agent"
	"github.com/nakshatra-7/Email-Agent/internal/api"
	"github.com/nakshatra-7/Email-Agent/internal/attachment"
	"github.com/nakshatra-7/Email-Agent/internal/classifier"
	"github.com/nakshatra-7/Email-Agent/internal/config"
	"github.com/nakshatra-7/Email-Agent/internal/database"
	"github.com/nakshatra-7/Email-Agent/internal/gmail"
	"github.com/nakshatra-7/Email-Agent/internal/notify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting email triage agent")

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Gmail client (optional: the agent still processes stored mail
	// without it)
	var gmailClient *gmail.Client
	gmailClient, err = gmail.NewClient(ctx, gmail.Config{
		CredentialsPath: cfg.CredentialsPath,
		TokenPath:       cfg.TokenPath,
		AttachmentDir:   cfg.AttachmentDir,
	}, db, logger)
	if err != nil {
		logger.Warn("gmail disabled", "error", err)
		gmailClient = nil
	}

	// Gemini classifier
	gemini, err := classifier.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Error("failed to create classifier", "error", err)
		os.Exit(1)
	}

	// Telegram notifier (optional)
	var notifier actions.UserNotifier
	if cfg.TelegramEnabled() {
		n, err := notify.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("failed to create notifier", "error", err)
			os.Exit(1)
		}
		notifier = n
		logger.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	// Dispatcher and runner
	var drafts actions.DraftCreator
	var fetcher agent.Fetcher
	var extractor agent.TextGatherer
	var apiGmail api.GmailService
	if gmailClient != nil {
		drafts = gmailClient
		fetcher = gmailClient
		extractor = attachment.NewExtractor(gmailClient, logger)
		apiGmail = gmailClient
	}

	dispatcher := actions.NewDispatcher(db, notifier, drafts, logger)
	runner := agent.NewRunner(db, fetcher, gemini, dispatcher, extractor, agent.Config{
		PollInterval: cfg.PollInterval(),
		FetchQuery:   cfg.GmailQuery,
		FetchLimit:   cfg.FetchLimit,
	}, logger)

	// HTTP API
	server := api.NewServer(api.Deps{
		DB:          db,
		Gmail:       apiGmail,
		Runner:      runner,
		Classifier:  gemini,
		Attachments: extractor,
		Logger:      logger,
	})
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(),
	}

	// Start background loop
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner.Start(loopCtx)

	// Setup graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		runner.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("http server listening", "addr", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("agent stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
