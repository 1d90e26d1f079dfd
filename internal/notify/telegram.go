// Package notify delivers user notifications over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Notifier sends notification messages to the configured chat
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	logger *slog.Logger
}

// NewNotifier creates a Telegram notifier
func NewNotifier(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	tgBot, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:    tgBot,
		chatID: chatID,
		logger: logger.With("component", "notifier"),
	}, nil
}

// Send sends an HTML-formatted notification message
func (n *Notifier) Send(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debug("notification sent", "chat_id", n.chatID)
	return nil
}
