// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the bot.
type Config struct {
	TelegramToken    string
	DatabaseURL      string
	JobSpyAPIURL     string
	JobSpyTimeout    time.Duration
	GeminiAPIKey     string
	AdminChatID      string // rate-limit bypass, optional
	MaxQueriesPerDay int
	Debug            bool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	apiURL := os.Getenv("JOBSPY_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	timeout := 30 * time.Second
	if s := os.Getenv("JOBSPY_TIMEOUT_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("JOBSPY_TIMEOUT_SECONDS must be a positive integer, got %q", s)
		}
		timeout = time.Duration(v) * time.Second
	}

	maxQueries := 3
	if s := os.Getenv("MAX_QUERIES_PER_DAY"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("MAX_QUERIES_PER_DAY must be a positive integer, got %q", s)
		}
		maxQueries = v
	}

	debug := false
	if s := os.Getenv("DEBUG"); s != "" {
		debug, _ = strconv.ParseBool(s)
	}

	return &Config{
		TelegramToken:    token,
		DatabaseURL:      dbURL,
		JobSpyAPIURL:     apiURL,
		JobSpyTimeout:    timeout,
		GeminiAPIKey:     geminiKey,
		AdminChatID:      os.Getenv("ADMIN_CHAT_ID"),
		MaxQueriesPerDay: maxQueries,
		Debug:            debug,
	}, nil
}
