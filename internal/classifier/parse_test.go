package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

func TestParse_AppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultClassification(), c)
}

func TestParse_FullPayload(t *testing.T) {
	data := []byte(`{
		"urgency": "critical",
		"importance": "important",
		"action_required": true,
		"needs_reply": true,
		"reply_complexity": "simple",
		"contains_meeting": true,
		"meeting_details": {
			"title": "Standup",
			"date": "2024-05-01",
			"start_time": "09:00",
			"end_time": "09:30",
			"timezone": "UTC",
			"location": null,
			"online_meeting_link": "https://meet.example.com/x"
		},
		"email_category": "work",
		"sender_role": "manager",
		"notification_recommended": true,
		"suggested_summary": "Daily standup invite"
	}`)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, models.UrgencyCritical, c.Urgency)
	assert.Equal(t, models.ImportanceImportant, c.Importance)
	assert.True(t, c.ActionRequired)
	assert.True(t, c.NeedsReply)
	assert.Equal(t, models.ReplySimple, c.ReplyComplexity)
	assert.True(t, c.ContainsMeeting)
	require.NotNil(t, c.MeetingDetails.Date)
	assert.Equal(t, "2024-05-01", *c.MeetingDetails.Date)
	require.NotNil(t, c.MeetingDetails.StartTime)
	assert.Equal(t, "09:00", *c.MeetingDetails.StartTime)
	assert.Nil(t, c.MeetingDetails.Location)
	assert.Equal(t, models.CategoryWork, c.EmailCategory)
	assert.Equal(t, models.RoleManager, c.SenderRole)
	assert.True(t, c.NotificationRecommended)
	assert.Equal(t, "Daily standup invite", c.SuggestedSummary)
}

func TestParse_UnknownEnumValuesCoerced(t *testing.T) {
	data := []byte(`{
		"urgency": "catastrophic",
		"importance": "vital",
		"reply_complexity": "herculean",
		"email_category": "lottery",
		"sender_role": "overlord"
	}`)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, models.UrgencyMedium, c.Urgency)
	assert.Equal(t, models.ImportanceNormal, c.Importance)
	assert.Equal(t, models.ReplyNone, c.ReplyComplexity)
	assert.Equal(t, models.CategoryOther, c.EmailCategory)
	assert.Equal(t, models.RoleUnknown, c.SenderRole)
}

func TestParse_EmptyMeetingStringsBecomeNil(t *testing.T) {
	data := []byte(`{
		"contains_meeting": true,
		"meeting_details": {"date": "", "start_time": ""}
	}`)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, c.ContainsMeeting)
	assert.Nil(t, c.MeetingDetails.Date)
	assert.Nil(t, c.MeetingDetails.StartTime)
}

func TestParse_MalformedJSONFails(t *testing.T) {
	_, err := Parse([]byte(`I cannot classify this email.`))
	assert.Error(t, err)
}
