// Package gmail wraps the Gmail REST API: syncing messages into the local
// store, downloading attachments, and creating drafts or sending mail.
package gmail

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nakshatra-7/Email-Agent/internal/database"
	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

const user = "me"

// Store is the subset of the database the Gmail client writes to
type Store interface {
	UpsertEmail(ctx context.Context, email *models.Email) error
	GetEmailByGmailID(ctx context.Context, gmailID string) (*models.Email, error)
}

// Config Gmail client configuration
type Config struct {
	CredentialsPath string
	TokenPath       string
	AttachmentDir   string
}

// Client Gmail API client
type Client struct {
	srv    *gmail.Service
	store  Store
	config Config
	logger *slog.Logger
}

// NewClient creates a Gmail client from a stored OAuth token. The token
// file must exist already; run the authorization flow once to create it.
func NewClient(ctx context.Context, cfg Config, store Store, logger *slog.Logger) (*Client, error) {
	httpClient, err := oauthClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}

	return &Client{
		srv:    srv,
		store:  store,
		config: cfg,
		logger: logger.With("component", "gmail"),
	}, nil
}

func oauthClient(ctx context.Context, cfg Config) (*http.Client, error) {
	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("token file %s not found, authorize first: %w", cfg.TokenPath, err)
	}

	return oauthConfig.Client(ctx, tok), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// FetchAndStore lists messages matching query and upserts any not yet in
// the store. Existing gmail ids are returned as stored, never re-inserted.
func (c *Client) FetchAndStore(ctx context.Context, query string, maxResults int64) ([]*models.Email, error) {
	list, err := c.srv.Users.Messages.List(user).Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list failed: %w", err)
	}

	var emails []*models.Email
	for _, meta := range list.Messages {
		existing, err := c.store.GetEmailByGmailID(ctx, meta.Id)
		if err == nil {
			emails = append(emails, existing)
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return emails, err
		}

		msg, err := c.srv.Users.Messages.Get(user, meta.Id).Format("full").Context(ctx).Do()
		if err != nil {
			c.logger.Warn("failed to fetch message", "gmail_id", meta.Id, "error", err)
			continue
		}

		email := c.parseMessage(msg)
		if err := c.store.UpsertEmail(ctx, email); err != nil {
			if errors.Is(err, database.ErrAlreadyExists) {
				continue
			}
			return emails, err
		}
		emails = append(emails, email)
	}

	c.logger.Info("gmail sync complete", "listed", len(list.Messages), "stored", len(emails))
	return emails, nil
}

// parseMessage flattens a full-format Gmail message into an Email record
func (c *Client) parseMessage(msg *gmail.Message) *models.Email {
	email := &models.Email{
		GmailID:  sql.NullString{String: msg.Id, Valid: true},
		ThreadID: sql.NullString{String: msg.ThreadId, Valid: msg.ThreadId != ""},
		Snippet:  msg.Snippet,
		Subject:  "(no subject)",
		Status:   models.StatusSent,
	}

	if msg.Payload == nil {
		return email
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			email.Subject = header.Value
		case "from":
			email.FromAddr = header.Value
		case "to":
			email.ToAddr = header.Value
		}
	}

	email.Body = plainTextBody(msg.Payload)

	attachments := collectAttachments(msg.Payload.Parts)
	if data, err := json.Marshal(attachments); err == nil {
		email.Attachments = string(data)
	}

	return email
}

// plainTextBody walks the MIME tree for the first text/plain part
func plainTextBody(payload *gmail.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
	}
	for _, part := range payload.Parts {
		mime := strings.ToLower(part.MimeType)
		if strings.HasPrefix(mime, "text/") || strings.HasPrefix(mime, "multipart/") {
			if body := plainTextBody(part); body != "" {
				return body
			}
		}
	}
	return ""
}

// collectAttachments gathers attachment metadata from all MIME parts
func collectAttachments(parts []*gmail.MessagePart) []models.AttachmentMeta {
	attachments := []models.AttachmentMeta{}
	for _, part := range parts {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			attachments = append(attachments, models.AttachmentMeta{
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				Size:         part.Body.Size,
				AttachmentID: part.Body.AttachmentId,
			})
		}
		if len(part.Parts) > 0 {
			attachments = append(attachments, collectAttachments(part.Parts)...)
		}
	}
	return attachments
}

// CreateDraft creates a Gmail draft reply
func (c *Client) CreateDraft(ctx context.Context, to, subject, body string) error {
	draft := &gmail.Draft{
		Message: &gmail.Message{Raw: encodeRFC822(to, "", subject, body)},
	}
	if _, err := c.srv.Users.Drafts.Create(user, draft).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// Send sends an Email record via Gmail and returns the sent message id
func (c *Client) Send(ctx context.Context, email *models.Email) (string, error) {
	msg := &gmail.Message{Raw: encodeRFC822(email.ToAddr, email.FromAddr, email.Subject, email.Body)}
	sent, err := c.srv.Users.Messages.Send(user, msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

func encodeRFC822(to, from, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	if from != "" {
		sb.WriteString("From: " + from + "\r\n")
	}
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}
