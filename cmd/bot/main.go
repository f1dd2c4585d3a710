package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/bot"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/config"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/jobspy"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/llm"
	"github.com/waterboxdeveloper/miprimerachamba-bot/internal/store"
	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Debug)
	slog.Info("Starting bot...")

	ctx := context.Background()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	limiter := store.NewLimiter(st, cfg.AdminChatID, cfg.MaxQueriesPerDay)

	search := jobspy.New(cfg.JobSpyAPIURL, cfg.JobSpyTimeout)
	if !search.HealthCheck(ctx) {
		slog.Warn("JobSpy API no responde, las búsquedas fallarán hasta que vuelva", "url", cfg.JobSpyAPIURL)
	}

	gemini, err := llm.New(cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	b, err := bot.New(cfg.TelegramToken, st, limiter, search, llm.NewMatcher(gemini))
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("Shutting down...")
		b.Close()
	}()

	if err := b.Start(); err != nil {
		slog.Error("Error running bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot detenido")
}
