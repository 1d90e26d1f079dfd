package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// CreateActionEvent records the outcome of one executed action handler
func (db *DB) CreateActionEvent(ctx context.Context, event *models.ActionEvent) error {
	query := `
		INSERT INTO action_events (email_id, action, payload, created_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, event.EmailID, event.Action, event.Payload, now)
	if err != nil {
		return fmt.Errorf("failed to create action event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	event.CreatedAt = now
	return nil
}

// ListActionEvents returns recent action events, most recent first
func (db *DB) ListActionEvents(ctx context.Context, limit int) ([]*models.ActionEvent, error) {
	var events []*models.ActionEvent
	query := `SELECT * FROM action_events ORDER BY created_at DESC, id DESC LIMIT ?`
	err := db.SelectContext(ctx, &events, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list action events: %w", err)
	}
	return events, nil
}
