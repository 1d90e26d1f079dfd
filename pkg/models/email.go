package models

import (
	"database/sql"
	"time"
)

// EmailStatus lifecycle status of an email record
type EmailStatus string

const (
	StatusDraft  EmailStatus = "draft"
	StatusQueued EmailStatus = "queued"
	StatusSent   EmailStatus = "sent"
	StatusFailed EmailStatus = "failed"
)

// Email represents a stored email message
type Email struct {
	ID             int64          `db:"id" json:"id"`
	GmailID        sql.NullString `db:"gmail_id" json:"gmail_id"`   // Gmail message id for synced mail
	ThreadID       sql.NullString `db:"thread_id" json:"thread_id"` // Gmail thread id
	Subject        string         `db:"subject" json:"subject"`
	Body           string         `db:"body" json:"body"`
	Snippet        string         `db:"snippet" json:"snippet"` // Short preview
	FromAddr       string         `db:"from_addr" json:"from_address"`
	ToAddr         string         `db:"to_addr" json:"to_address"`
	Status         EmailStatus    `db:"status" json:"status"`
	Attachments    string         `db:"attachments" json:"-"`    // JSON array of AttachmentMeta
	Classification sql.NullString `db:"classification" json:"-"` // JSON Classification payload
	Actions        string         `db:"actions" json:"-"`        // JSON array of Action tags
	Processed      bool           `db:"processed" json:"processed"`
	ProcessedAt    sql.NullTime   `db:"processed_at" json:"processed_at"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// AttachmentMeta describes one attachment of a synced Gmail message
type AttachmentMeta struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachment_id"`
}
