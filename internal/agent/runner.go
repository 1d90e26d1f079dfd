// Package agent drives the periodic triage loop: fetch new mail, classify
// each unprocessed email, derive actions, execute them, and persist the
// result.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/nakshatra-7/Email-Agent/internal/classifier"
	"github.com/nakshatra-7/Email-Agent/internal/htmltext"
	"github.com/nakshatra-7/Email-Agent/internal/policy"
	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// Store is the subset of the database the runner needs
type Store interface {
	ListUnprocessed(ctx context.Context) ([]*models.Email, error)
	MarkProcessed(ctx context.Context, id int64, classificationJSON, actionsJSON string, processedAt time.Time) error
}

// Fetcher pulls new messages from the mail source into the store
type Fetcher interface {
	FetchAndStore(ctx context.Context, query string, maxResults int64) ([]*models.Email, error)
}

// TextGatherer collects attachment text for classifier input
type TextGatherer interface {
	Gather(ctx context.Context, email *models.Email) string
}

// Executor runs the derived actions for one email
type Executor interface {
	Execute(ctx context.Context, email *models.Email, c models.Classification, actions []models.Action)
}

// Config runner configuration
type Config struct {
	PollInterval time.Duration
	FetchQuery   string
	FetchLimit   int64
}

// Runner owns the triage loop. At most one tick executes at a time: the
// background loop and out-of-band RunOnce callers share a tick mutex.
type Runner struct {
	store       Store
	fetcher     Fetcher
	classifier  classifier.Classifier
	executor    Executor
	attachments TextGatherer // nil when attachment extraction is disabled
	config      Config
	logger      *slog.Logger

	tickMu  sync.Mutex
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// NewRunner creates a Runner
func NewRunner(store Store, fetcher Fetcher, cls classifier.Classifier, executor Executor, attachments TextGatherer, cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		store:       store,
		fetcher:     fetcher,
		classifier:  cls,
		executor:    executor,
		attachments: attachments,
		config:      cfg,
		logger:      logger.With("component", "agent"),
		stopCh:      make(chan struct{}),
	}
}

// RunOnce executes a single tick: fetch, select unprocessed, and process
// each candidate sequentially. Per-message failures are logged and leave
// the message unprocessed for a later tick. Returns the number of emails
// completed.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	if r.fetcher != nil {
		if _, err := r.fetcher.FetchAndStore(ctx, r.config.FetchQuery, r.config.FetchLimit); err != nil {
			// Fetch failure aborts only the fetch step; already stored
			// messages are still processed and the next tick retries.
			r.logger.Error("fetch failed", "error", err)
		}
	}

	candidates, err := r.store.ListUnprocessed(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to select unprocessed emails: %w", err)
	}

	count := 0
	for _, email := range candidates {
		if ctx.Err() != nil {
			break
		}
		if err := r.processEmail(ctx, email); err != nil {
			r.logger.Error("failed to process email", "email_id", email.ID, "error", err)
			continue
		}
		count++
	}

	return count, nil
}

var htmlTagRegex = regexp.MustCompile(`(?i)<\s*(html|body|head|div|p|br|table|span)[\s>/]`)

func (r *Runner) processEmail(ctx context.Context, email *models.Email) error {
	body := email.Body
	if body == "" {
		body = email.Snippet
	}
	if htmlTagRegex.MatchString(body) {
		if text, err := htmltext.ToText(body); err == nil && text != "" {
			body = text
		}
	}

	if r.attachments != nil {
		if text := r.attachments.Gather(ctx, email); text != "" {
			body = body + "\n\nAttachment excerpts:\n" + text
		}
	}

	c, err := r.classifier.Classify(ctx, classifier.Input{
		Subject: email.Subject,
		Sender:  email.FromAddr,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	derived := policy.Decide(c)
	r.executor.Execute(ctx, email, c, derived)

	classificationJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode classification: %w", err)
	}
	actionsJSON, err := json.Marshal(derived)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	if err := r.store.MarkProcessed(ctx, email.ID, string(classificationJSON), string(actionsJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to persist processing result: %w", err)
	}

	r.logger.Info("email processed",
		"email_id", email.ID,
		"urgency", c.Urgency,
		"actions", derived,
	)
	return nil
}

// Start launches the background loop. The loop is a self-correcting
// fixed-interval scheduler: an overrunning tick shortens the following
// sleep, down to zero, and ticks never overlap.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		r.logger.Info("agent loop started",
			"interval", r.config.PollInterval,
			"query", r.config.FetchQuery,
			"fetch_limit", r.config.FetchLimit,
		)

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("agent loop stopped", "reason", "context done")
				return
			case <-r.stopCh:
				r.logger.Info("agent loop stopped", "reason", "stop signal")
				return
			default:
			}

			started := time.Now()
			processed, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("tick failed", "error", err)
			} else {
				r.logger.Info("tick done", "processed", processed, "elapsed", time.Since(started))
			}

			sleep := r.config.PollInterval - time.Since(started)
			if sleep < 0 {
				sleep = 0
			}

			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				r.logger.Info("agent loop stopped", "reason", "context done")
				return
			case <-r.stopCh:
				timer.Stop()
				r.logger.Info("agent loop stopped", "reason", "stop signal")
				return
			case <-timer.C:
			}
		}
	}()
}

// Stop signals the background loop to exit after the current tick
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	close(r.stopCh)
}
