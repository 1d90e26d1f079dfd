package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Agent loop
	PollSeconds int    `env:"AGENT_POLL_SECONDS" envDefault:"900"`
	FetchLimit  int64  `env:"AGENT_FETCH_LIMIT" envDefault:"10"`
	GmailQuery  string `env:"AGENT_GMAIL_QUERY" envDefault:"is:unread in:inbox"`

	// Gemini classifier
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL_NAME" envDefault:"gemini-1.5-flash-latest"`

	// Gmail OAuth
	CredentialsPath string `env:"GOOGLE_CREDENTIALS_PATH" envDefault:"./data/google_client_secret.json"`
	TokenPath       string `env:"GOOGLE_TOKEN_PATH" envDefault:"./data/token.json"`
	AttachmentDir   string `env:"ATTACHMENT_DIR" envDefault:"./data/attachments"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/email.db"`

	// HTTP API
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	// Telegram notifications (optional)
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// PollInterval returns the agent poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// TelegramEnabled returns true if the Telegram notification channel is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PollSeconds <= 0 {
		return nil, fmt.Errorf("AGENT_POLL_SECONDS must be positive, got %d", cfg.PollSeconds)
	}
	if cfg.FetchLimit <= 0 {
		return nil, fmt.Errorf("AGENT_FETCH_LIMIT must be positive, got %d", cfg.FetchLimit)
	}

	return cfg, nil
}
