package models

import "time"

// Action is one member of the closed set of follow-up operations the
// agent can request for an email.
type Action string

const (
	ActionNotifyUser          Action = "NOTIFY_USER"
	ActionCreateCalendarEvent Action = "CREATE_CALENDAR_EVENT"
	ActionAutoDraftReply      Action = "AUTO_DRAFT_REPLY"
	ActionSuggestReplyDraft   Action = "SUGGEST_REPLY_DRAFT"
	ActionSummaryOnly         Action = "SUMMARY_ONLY"
	ActionNoAction            Action = "NO_ACTION"
)

// ActionEvent records the outcome of one executed action handler
type ActionEvent struct {
	ID        int64     `db:"id" json:"id"`
	EmailID   int64     `db:"email_id" json:"email_id"`
	Action    Action    `db:"action" json:"action"`
	Payload   string    `db:"payload" json:"payload"` // handler output: notification text, draft, meeting JSON, summary
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
