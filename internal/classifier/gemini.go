package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

const systemPrompt = `You are an email analysis assistant. Given an email subject, sender, and body, you must output ONLY JSON following this exact schema:
{
  "urgency": "critical | high | medium | low",
  "importance": "important | normal | trivial",
  "action_required": true or false,
  "needs_reply": true or false,
  "reply_complexity": "none | simple | complex",
  "contains_meeting": true or false,
  "meeting_details": {
    "title": string or null,
    "date": "YYYY-MM-DD" or null,
    "start_time": "HH:MM" or null,
    "end_time": "HH:MM" or null,
    "timezone": string or null,
    "location": string or null,
    "online_meeting_link": string or null
  },
  "email_category": "academic | work | finance | social | marketing | notification | spam | other",
  "sender_role": "manager | professor | recruiter | friend | service | unknown",
  "notification_recommended": true or false,
  "suggested_summary": string
}
Guidelines:
- Assess urgency and importance from tone, sender, and deadlines.
- Decide if action is required and if a reply is needed; set reply_complexity accordingly.
- Detect meeting/event details if present and populate meeting_details.
- Categorize the email and infer sender_role.
- Recommend notification for high-urgency items.
- Provide a concise suggested_summary.
Respond with JSON only, no extra text.`

// Gemini classifies emails with the Gemini API in JSON response mode.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini classifier
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logger.With("component", "classifier"),
	}, nil
}

// Classify sends the email to Gemini and parses the JSON analysis.
// Transport errors, empty responses and malformed JSON are hard failures
// for this email; the caller retries on a later tick.
func (g *Gemini) Classify(ctx context.Context, in Input) (models.Classification, error) {
	emailText := fmt.Sprintf("Subject: %s\nFrom: %s\n\nBody:\n%s", in.Subject, in.Sender, in.Body)

	temperature := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temperature,
		// Force JSON-only output.
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(emailText), cfg)
	if err != nil {
		return models.Classification{}, fmt.Errorf("gemini call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return models.Classification{}, fmt.Errorf("empty response from gemini")
	}

	c, err := Parse([]byte(text))
	if err != nil {
		return models.Classification{}, err
	}

	g.logger.Debug("classified email",
		"subject", in.Subject,
		"urgency", c.Urgency,
		"category", c.EmailCategory,
	)
	return c, nil
}
