package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// CreateEmail creates a new email record
func (db *DB) CreateEmail(ctx context.Context, email *models.Email) error {
	query := `
		INSERT INTO emails (gmail_id, thread_id, subject, body, snippet, from_addr, to_addr, status, attachments, actions, processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	if email.Attachments == "" {
		email.Attachments = "[]"
	}
	if email.Actions == "" {
		email.Actions = "[]"
	}
	result, err := db.ExecContext(ctx, query,
		email.GmailID,
		email.ThreadID,
		email.Subject,
		email.Body,
		email.Snippet,
		email.FromAddr,
		email.ToAddr,
		email.Status,
		email.Attachments,
		email.Actions,
		email.Processed,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create email: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	email.ID = id
	email.CreatedAt = now
	email.UpdatedAt = now
	return nil
}

// UpsertEmail inserts a Gmail-synced email unless its gmail_id is already
// stored. Returns ErrAlreadyExists when the record was skipped.
func (db *DB) UpsertEmail(ctx context.Context, email *models.Email) error {
	query := `
		INSERT OR IGNORE INTO emails (gmail_id, thread_id, subject, body, snippet, from_addr, to_addr, status, attachments, actions, processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	if email.Attachments == "" {
		email.Attachments = "[]"
	}
	if email.Actions == "" {
		email.Actions = "[]"
	}
	result, err := db.ExecContext(ctx, query,
		email.GmailID,
		email.ThreadID,
		email.Subject,
		email.Body,
		email.Snippet,
		email.FromAddr,
		email.ToAddr,
		email.Status,
		email.Attachments,
		email.Actions,
		email.Processed,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert email: %w", err)
	}

	// Check if row was actually inserted (not ignored due to duplicate)
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyExists
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	email.ID = id
	email.CreatedAt = now
	email.UpdatedAt = now
	return nil
}

// GetEmailByID returns an email by internal ID
func (db *DB) GetEmailByID(ctx context.Context, id int64) (*models.Email, error) {
	var email models.Email
	query := `SELECT * FROM emails WHERE id = ?`
	err := db.GetContext(ctx, &email, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return &email, nil
}

// GetEmailByGmailID returns an email by its Gmail message id
func (db *DB) GetEmailByGmailID(ctx context.Context, gmailID string) (*models.Email, error) {
	var email models.Email
	query := `SELECT * FROM emails WHERE gmail_id = ?`
	err := db.GetContext(ctx, &email, query, gmailID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return &email, nil
}

// ListEmails returns emails, optionally filtered by status, newest first
func (db *DB) ListEmails(ctx context.Context, status models.EmailStatus) ([]*models.Email, error) {
	var emails []*models.Email
	var err error
	if status != "" {
		query := `SELECT * FROM emails WHERE status = ? ORDER BY created_at DESC`
		err = db.SelectContext(ctx, &emails, query, status)
	} else {
		query := `SELECT * FROM emails ORDER BY created_at DESC`
		err = db.SelectContext(ctx, &emails, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// ListSyncedEmails returns emails that came from Gmail, optionally
// filtered by status, newest first
func (db *DB) ListSyncedEmails(ctx context.Context, status models.EmailStatus) ([]*models.Email, error) {
	var emails []*models.Email
	var err error
	if status != "" {
		query := `SELECT * FROM emails WHERE gmail_id IS NOT NULL AND status = ? ORDER BY created_at DESC`
		err = db.SelectContext(ctx, &emails, query, status)
	} else {
		query := `SELECT * FROM emails WHERE gmail_id IS NOT NULL ORDER BY created_at DESC`
		err = db.SelectContext(ctx, &emails, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list synced emails: %w", err)
	}
	return emails, nil
}

// ListUnprocessed returns all emails not yet processed by the agent,
// oldest first
func (db *DB) ListUnprocessed(ctx context.Context) ([]*models.Email, error) {
	var emails []*models.Email
	query := `SELECT * FROM emails WHERE processed = false ORDER BY created_at ASC, id ASC`
	err := db.SelectContext(ctx, &emails, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed emails: %w", err)
	}
	return emails, nil
}

// ListProcessed returns recently processed emails, most recent first
func (db *DB) ListProcessed(ctx context.Context, limit int) ([]*models.Email, error) {
	var emails []*models.Email
	query := `SELECT * FROM emails WHERE processed = true ORDER BY processed_at DESC, updated_at DESC LIMIT ?`
	err := db.SelectContext(ctx, &emails, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed emails: %w", err)
	}
	return emails, nil
}

// MarkProcessed commits the classification, derived actions and processed
// flag for one email as a single atomic update.
func (db *DB) MarkProcessed(ctx context.Context, id int64, classificationJSON, actionsJSON string, processedAt time.Time) error {
	query := `
		UPDATE emails
		SET classification = ?, actions = ?, processed = true, processed_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.ExecContext(ctx, query, classificationJSON, actionsJSON, processedAt, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark email processed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAnalysis stores the classification and derived actions for one
// email without touching the processed flag, so the agent loop still
// picks it up on a later tick.
func (db *DB) UpdateAnalysis(ctx context.Context, id int64, classificationJSON, actionsJSON string) error {
	query := `
		UPDATE emails
		SET classification = ?, actions = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.ExecContext(ctx, query, classificationJSON, actionsJSON, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update email analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailUpdate carries optional field updates for an email
type EmailUpdate struct {
	Subject *string             `json:"subject"`
	Body    *string             `json:"body"`
	Status  *models.EmailStatus `json:"status"`
}

// UpdateEmail applies the non-nil fields of upd to an email
func (db *DB) UpdateEmail(ctx context.Context, id int64, upd EmailUpdate) (*models.Email, error) {
	email, err := db.GetEmailByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Subject != nil {
		email.Subject = *upd.Subject
	}
	if upd.Body != nil {
		email.Body = *upd.Body
	}
	if upd.Status != nil {
		email.Status = *upd.Status
	}

	now := time.Now().UTC()
	query := `UPDATE emails SET subject = ?, body = ?, status = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, email.Subject, email.Body, email.Status, now, id); err != nil {
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	email.UpdatedAt = now
	return email, nil
}

// UpdateEmailStatus updates only the status of an email
func (db *DB) UpdateEmailStatus(ctx context.Context, id int64, status models.EmailStatus) error {
	query := `UPDATE emails SET status = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update email status: %w", err)
	}
	return nil
}

// DeleteEmail deletes an email by ID
func (db *DB) DeleteEmail(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
