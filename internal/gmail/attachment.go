package gmail

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DownloadAttachment downloads one attachment to the configured directory
// and returns its path. Filenames are shortened and suffixed with a hash
// so sibling attachments never collide.
func (c *Client) DownloadAttachment(ctx context.Context, gmailID, attachmentID, filename string) (string, error) {
	att, err := c.srv.Users.Messages.Attachments.Get(user, gmailID, attachmentID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(att.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode attachment data: %w", err)
	}

	if err := os.MkdirAll(c.config.AttachmentDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}

	path := filepath.Join(c.config.AttachmentDir, safeAttachmentName(gmailID, attachmentID, filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	return path, nil
}

func safeAttachmentName(gmailID, attachmentID, filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		base = "attachment"
	}
	base = strings.ReplaceAll(base, string(filepath.Separator), "_")

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if len(stem) > 60 {
		stem = stem[:60]
	}

	digest := sha1.Sum([]byte(gmailID + "_" + attachmentID))
	suffix := fmt.Sprintf("%x", digest)[:8]

	if stem == "" {
		return "file_" + suffix + ext
	}
	return stem + "_" + suffix + ext
}
