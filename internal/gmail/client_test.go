package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestPlainTextBody(t *testing.T) {
	t.Run("direct text part", func(t *testing.T) {
		payload := &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: b64("hello")},
		}
		assert.Equal(t, "hello", plainTextBody(payload))
	})

	t.Run("nested multipart", func(t *testing.T) {
		payload := &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>hi</p>")}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("hi")}},
			},
		}
		assert.Equal(t, "hi", plainTextBody(payload))
	})

	t.Run("no text part", func(t *testing.T) {
		payload := &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "a1"}},
			},
		}
		assert.Equal(t, "", plainTextBody(payload))
	})
}

func TestCollectAttachments(t *testing.T) {
	parts := []*gmail.MessagePart{
		{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("x")}},
		{
			Filename: "invoice.pdf",
			MimeType: "application/pdf",
			Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1024},
		},
		{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					Filename: "notes.pdf",
					MimeType: "application/pdf",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-2", Size: 2048},
				},
			},
		},
	}

	attachments := collectAttachments(parts)
	require.Len(t, attachments, 2)
	assert.Equal(t, "invoice.pdf", attachments[0].Filename)
	assert.Equal(t, "att-1", attachments[0].AttachmentID)
	assert.Equal(t, "notes.pdf", attachments[1].Filename)
	assert.Equal(t, int64(2048), attachments[1].Size)
}

func TestEncodeRFC822(t *testing.T) {
	raw := encodeRFC822("to@example.com", "from@example.com", "Hi", "body text")
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	msg := string(decoded)
	assert.Contains(t, msg, "To: to@example.com\r\n")
	assert.Contains(t, msg, "From: from@example.com\r\n")
	assert.Contains(t, msg, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nbody text"))
}

func TestSafeAttachmentName(t *testing.T) {
	t.Run("keeps extension and adds digest", func(t *testing.T) {
		name := safeAttachmentName("g1", "a1", "report.pdf")
		assert.True(t, strings.HasPrefix(name, "report_"))
		assert.True(t, strings.HasSuffix(name, ".pdf"))
	})

	t.Run("same ids produce stable name", func(t *testing.T) {
		assert.Equal(t, safeAttachmentName("g1", "a1", "x.pdf"), safeAttachmentName("g1", "a1", "x.pdf"))
	})

	t.Run("different ids avoid collision", func(t *testing.T) {
		assert.NotEqual(t, safeAttachmentName("g1", "a1", "x.pdf"), safeAttachmentName("g1", "a2", "x.pdf"))
	})

	t.Run("empty filename", func(t *testing.T) {
		name := safeAttachmentName("g1", "a1", "")
		assert.NotEmpty(t, name)
	})

	t.Run("long stem truncated", func(t *testing.T) {
		name := safeAttachmentName("g1", "a1", strings.Repeat("a", 200)+".pdf")
		assert.LessOrEqual(t, len(name), 80)
	})
}
