// Package attachment extracts text from email attachments so it can be
// fed to the classifier alongside the body. Extraction is best-effort:
// every failure degrades to skipping the attachment, never to an error.
package attachment

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// Downloader fetches a single attachment to disk and returns its path
type Downloader interface {
	DownloadAttachment(ctx context.Context, gmailID, attachmentID, filename string) (string, error)
}

// Extractor gathers attachment text for Gmail-synced emails
type Extractor struct {
	downloader Downloader
	logger     *slog.Logger
}

// NewExtractor creates an attachment text extractor
func NewExtractor(downloader Downloader, logger *slog.Logger) *Extractor {
	return &Extractor{
		downloader: downloader,
		logger:     logger.With("component", "attachment"),
	}
}

// Gather downloads the PDF attachments of a Gmail-synced email and returns
// their concatenated text. Non-PDF attachments and any failures are skipped.
func (e *Extractor) Gather(ctx context.Context, email *models.Email) string {
	if !email.GmailID.Valid || email.Attachments == "" {
		return ""
	}

	var attachments []models.AttachmentMeta
	if err := json.Unmarshal([]byte(email.Attachments), &attachments); err != nil {
		e.logger.Warn("failed to parse attachment metadata", "email_id", email.ID, "error", err)
		return ""
	}

	var chunks []string
	for _, att := range attachments {
		if att.MimeType != "application/pdf" || att.AttachmentID == "" {
			continue
		}

		path, err := e.downloader.DownloadAttachment(ctx, email.GmailID.String, att.AttachmentID, att.Filename)
		if err != nil {
			e.logger.Warn("skipping attachment", "filename", att.Filename, "error", err)
			continue
		}

		text := extractPDFText(path)
		if text != "" {
			chunks = append(chunks, "Attachment: "+att.Filename+"\n"+text)
		}
	}

	return strings.Join(chunks, "\n\n")
}

// extractPDFText reads all page text from a PDF, returning "" on any failure
func extractPDFText(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var buf bytes.Buffer
	r, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return ""
	}

	return strings.TrimSpace(buf.String())
}
