// Package actions executes the follow-up actions derived for an email.
// Handlers are best-effort and side-effect-only: a failing handler is
// logged and never blocks its siblings or the processing loop.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// EventStore persists action outcomes
type EventStore interface {
	CreateActionEvent(ctx context.Context, event *models.ActionEvent) error
}

// UserNotifier delivers a notification to the user
type UserNotifier interface {
	Send(ctx context.Context, text string) error
}

// DraftCreator creates a reply draft at the mail provider
type DraftCreator interface {
	CreateDraft(ctx context.Context, to, subject, body string) error
}

// Dispatcher maps each action tag to its handler
type Dispatcher struct {
	events   EventStore
	notifier UserNotifier // nil when no notification channel is configured
	drafts   DraftCreator // nil in tests
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(events EventStore, notifier UserNotifier, drafts DraftCreator, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		events:   events,
		notifier: notifier,
		drafts:   drafts,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Execute runs one handler per action. Handler failures are logged and do
// not prevent subsequent handlers from running.
func (d *Dispatcher) Execute(ctx context.Context, email *models.Email, c models.Classification, actions []models.Action) {
	for _, action := range actions {
		if err := d.run(ctx, action, email, c); err != nil {
			d.logger.Error("action handler failed",
				"action", action,
				"email_id", email.ID,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, action models.Action, email *models.Email, c models.Classification) error {
	switch action {
	case models.ActionNotifyUser:
		return d.notifyUser(ctx, email, c)
	case models.ActionCreateCalendarEvent:
		return d.createCalendarEvent(ctx, email, c)
	case models.ActionAutoDraftReply:
		return d.autoDraftReply(ctx, email, c)
	case models.ActionSuggestReplyDraft:
		return d.suggestReplyDraft(ctx, email, c)
	case models.ActionSummaryOnly:
		return d.summarize(ctx, email, c)
	case models.ActionNoAction:
		d.logger.Debug("no action taken", "email_id", email.ID)
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (d *Dispatcher) notifyUser(ctx context.Context, email *models.Email, c models.Classification) error {
	summary := c.SuggestedSummary
	if summary == "" {
		summary = "[no summary]"
	}
	// From headers carry "Name <addr>"; escape every interpolated field or
	// Telegram rejects the message as malformed HTML.
	text := fmt.Sprintf("📧 <b>%s</b>\nFrom: %s\nUrgency: %s\n\n%s",
		escapeHTML(email.Subject), escapeHTML(email.FromAddr), c.Urgency, escapeHTML(summary))

	if d.notifier != nil {
		if err := d.notifier.Send(ctx, text); err != nil {
			// Delivery is not guaranteed; the record below still documents
			// that a notification was requested.
			d.logger.Warn("notification delivery failed", "email_id", email.ID, "error", err)
		}
	}

	return d.events.CreateActionEvent(ctx, &models.ActionEvent{
		EmailID: email.ID,
		Action:  models.ActionNotifyUser,
		Payload: text,
	})
}

func (d *Dispatcher) createCalendarEvent(ctx context.Context, email *models.Email, c models.Classification) error {
	md := c.MeetingDetails
	payload := map[string]any{
		"title":               valueOr(md.Title, "Meeting"),
		"date":                valueOr(md.Date, ""),
		"start_time":          valueOr(md.StartTime, ""),
		"end_time":            valueOr(md.EndTime, ""),
		"timezone":            valueOr(md.Timezone, ""),
		"location":            valueOr(md.Location, ""),
		"online_meeting_link": valueOr(md.OnlineMeetingLink, ""),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode meeting payload: %w", err)
	}

	return d.events.CreateActionEvent(ctx, &models.ActionEvent{
		EmailID: email.ID,
		Action:  models.ActionCreateCalendarEvent,
		Payload: string(data),
	})
}

func (d *Dispatcher) autoDraftReply(ctx context.Context, email *models.Email, c models.Classification) error {
	draft := fmt.Sprintf(
		"Hi,\n\nThanks for reaching out. I saw your message and will address this as soon as possible.\n\nSummary: %s\n\nBest,\nYour Email Agent",
		c.SuggestedSummary,
	)

	if d.drafts != nil {
		if err := d.drafts.CreateDraft(ctx, email.FromAddr, "Re: "+email.Subject, draft); err != nil {
			d.logger.Warn("failed to create gmail draft", "email_id", email.ID, "error", err)
		}
	}

	return d.events.CreateActionEvent(ctx, &models.ActionEvent{
		EmailID: email.ID,
		Action:  models.ActionAutoDraftReply,
		Payload: draft,
	})
}

func (d *Dispatcher) suggestReplyDraft(ctx context.Context, email *models.Email, c models.Classification) error {
	draft := fmt.Sprintf(
		"Hi,\n\nHere's a suggested reply based on the email:\n\n%s\n\nFeel free to edit and send.",
		c.SuggestedSummary,
	)

	return d.events.CreateActionEvent(ctx, &models.ActionEvent{
		EmailID: email.ID,
		Action:  models.ActionSuggestReplyDraft,
		Payload: draft,
	})
}

func (d *Dispatcher) summarize(ctx context.Context, email *models.Email, c models.Classification) error {
	summary := c.SuggestedSummary
	if summary == "" {
		summary = "[no summary]"
	}

	return d.events.CreateActionEvent(ctx, &models.ActionEvent{
		EmailID: email.ID,
		Action:  models.ActionSummaryOnly,
		Payload: summary,
	})
}

// escapeHTML escapes HTML special characters for Telegram
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
