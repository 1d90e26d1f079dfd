package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// rawAnalysis mirrors the model output with every field optional, so a
// partially filled response can still be defaulted.
type rawAnalysis struct {
	Urgency                 *string                `json:"urgency"`
	Importance              *string                `json:"importance"`
	ActionRequired          *bool                  `json:"action_required"`
	NeedsReply              *bool                  `json:"needs_reply"`
	ReplyComplexity         *string                `json:"reply_complexity"`
	ContainsMeeting         *bool                  `json:"contains_meeting"`
	MeetingDetails          *models.MeetingDetails `json:"meeting_details"`
	EmailCategory           *string                `json:"email_category"`
	SenderRole              *string                `json:"sender_role"`
	NotificationRecommended *bool                  `json:"notification_recommended"`
	SuggestedSummary        *string                `json:"suggested_summary"`
}

// Parse decodes model output into a fully defaulted Classification.
// Missing fields take their documented defaults and values outside the
// closed enum sets are coerced back to the default, so the policy always
// sees a total value. Malformed JSON is an error.
func Parse(data []byte) (models.Classification, error) {
	var raw rawAnalysis
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Classification{}, fmt.Errorf("failed to parse classifier JSON: %w", err)
	}

	c := models.DefaultClassification()

	if raw.Urgency != nil {
		switch u := models.Urgency(*raw.Urgency); u {
		case models.UrgencyCritical, models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow:
			c.Urgency = u
		}
	}
	if raw.Importance != nil {
		switch i := models.Importance(*raw.Importance); i {
		case models.ImportanceImportant, models.ImportanceNormal, models.ImportanceTrivial:
			c.Importance = i
		}
	}
	if raw.ActionRequired != nil {
		c.ActionRequired = *raw.ActionRequired
	}
	if raw.NeedsReply != nil {
		c.NeedsReply = *raw.NeedsReply
	}
	if raw.ReplyComplexity != nil {
		switch r := models.ReplyComplexity(*raw.ReplyComplexity); r {
		case models.ReplyNone, models.ReplySimple, models.ReplyComplex:
			c.ReplyComplexity = r
		}
	}
	if raw.ContainsMeeting != nil {
		c.ContainsMeeting = *raw.ContainsMeeting
	}
	if raw.MeetingDetails != nil {
		c.MeetingDetails = *raw.MeetingDetails
		// Treat empty strings as absent.
		if c.MeetingDetails.Date != nil && *c.MeetingDetails.Date == "" {
			c.MeetingDetails.Date = nil
		}
		if c.MeetingDetails.StartTime != nil && *c.MeetingDetails.StartTime == "" {
			c.MeetingDetails.StartTime = nil
		}
	}
	if raw.EmailCategory != nil {
		switch e := models.EmailCategory(*raw.EmailCategory); e {
		case models.CategoryAcademic, models.CategoryWork, models.CategoryFinance, models.CategorySocial,
			models.CategoryMarketing, models.CategoryNotification, models.CategorySpam, models.CategoryOther:
			c.EmailCategory = e
		}
	}
	if raw.SenderRole != nil {
		switch s := models.SenderRole(*raw.SenderRole); s {
		case models.RoleManager, models.RoleProfessor, models.RoleRecruiter,
			models.RoleFriend, models.RoleService, models.RoleUnknown:
			c.SenderRole = s
		}
	}
	if raw.NotificationRecommended != nil {
		c.NotificationRecommended = *raw.NotificationRecommended
	}
	if raw.SuggestedSummary != nil {
		c.SuggestedSummary = *raw.SuggestedSummary
	}

	return c, nil
}
