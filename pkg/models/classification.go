package models

// Urgency how urgent the email is
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Importance how important the email is
type Importance string

const (
	ImportanceImportant Importance = "important"
	ImportanceNormal    Importance = "normal"
	ImportanceTrivial   Importance = "trivial"
)

// ReplyComplexity how involved a reply would be
type ReplyComplexity string

const (
	ReplyNone    ReplyComplexity = "none"
	ReplySimple  ReplyComplexity = "simple"
	ReplyComplex ReplyComplexity = "complex"
)

// EmailCategory coarse content category
type EmailCategory string

const (
	CategoryAcademic     EmailCategory = "academic"
	CategoryWork         EmailCategory = "work"
	CategoryFinance      EmailCategory = "finance"
	CategorySocial       EmailCategory = "social"
	CategoryMarketing    EmailCategory = "marketing"
	CategoryNotification EmailCategory = "notification"
	CategorySpam         EmailCategory = "spam"
	CategoryOther        EmailCategory = "other"
)

// SenderRole inferred relationship of the sender to the user
type SenderRole string

const (
	RoleManager   SenderRole = "manager"
	RoleProfessor SenderRole = "professor"
	RoleRecruiter SenderRole = "recruiter"
	RoleFriend    SenderRole = "friend"
	RoleService   SenderRole = "service"
	RoleUnknown   SenderRole = "unknown"
)

// MeetingDetails optional meeting info extracted from an email.
// Every field is independently nullable.
type MeetingDetails struct {
	Title             *string `json:"title"`
	Date              *string `json:"date"`       // YYYY-MM-DD
	StartTime         *string `json:"start_time"` // HH:MM
	EndTime           *string `json:"end_time"`   // HH:MM
	Timezone          *string `json:"timezone"`
	Location          *string `json:"location"`
	OnlineMeetingLink *string `json:"online_meeting_link"`
}

// Classification is the structured intent analysis of one email.
// Every field carries an explicit default applied at the classifier
// parse boundary; the policy never sees a partially absent value.
type Classification struct {
	Urgency                 Urgency         `json:"urgency"`
	Importance              Importance      `json:"importance"`
	ActionRequired          bool            `json:"action_required"`
	NeedsReply              bool            `json:"needs_reply"`
	ReplyComplexity         ReplyComplexity `json:"reply_complexity"`
	ContainsMeeting         bool            `json:"contains_meeting"`
	MeetingDetails          MeetingDetails  `json:"meeting_details"`
	EmailCategory           EmailCategory   `json:"email_category"`
	SenderRole              SenderRole      `json:"sender_role"`
	NotificationRecommended bool            `json:"notification_recommended"`
	SuggestedSummary        string          `json:"suggested_summary"`
}

// DefaultClassification returns a Classification with every field at its
// documented default.
func DefaultClassification() Classification {
	return Classification{
		Urgency:         UrgencyMedium,
		Importance:      ImportanceNormal,
		ReplyComplexity: ReplyNone,
		EmailCategory:   CategoryOther,
		SenderRole:      RoleUnknown,
	}
}
