// Package policy translates an email classification into the ordered set
// of follow-up actions the agent executes for that email.
package policy

import "github.com/nakshatra-7/Email-Agent/pkg/models"

// appendUnique adds action to actions unless it is already present.
// Rules accumulate: a later rule never removes what an earlier rule added.
func appendUnique(actions []models.Action, action models.Action) []models.Action {
	for _, a := range actions {
		if a == action {
			return actions
		}
	}
	return append(actions, action)
}

func urgentOrCritical(u models.Urgency) bool {
	return u == models.UrgencyHigh || u == models.UrgencyCritical
}

// Decide maps a classification to an ordered, duplicate-free action list.
// It is a pure function, total over Classification, and never returns an
// empty list: when nothing fires the result is exactly [NO_ACTION].
func Decide(c models.Classification) []models.Action {
	var actions []models.Action

	// Recruiter mail always notifies.
	if c.SenderRole == models.RoleRecruiter {
		actions = appendUnique(actions, models.ActionNotifyUser)
	}

	// Professor or academic mail notifies, and gets a suggested draft when
	// an urgent reply is needed.
	if c.SenderRole == models.RoleProfessor || c.EmailCategory == models.CategoryAcademic {
		actions = appendUnique(actions, models.ActionNotifyUser)
		if c.NeedsReply && urgentOrCritical(c.Urgency) {
			actions = appendUnique(actions, models.ActionSuggestReplyDraft)
		}
	}

	// Recommended notifications for medium urgency and above.
	switch c.Urgency {
	case models.UrgencyCritical, models.UrgencyHigh, models.UrgencyMedium:
		if c.NotificationRecommended {
			actions = appendUnique(actions, models.ActionNotifyUser)
		}
	}

	// Calendar events require a concrete date and start time; a detected
	// meeting without both would create an underspecified entry.
	if c.ContainsMeeting && c.MeetingDetails.Date != nil && *c.MeetingDetails.Date != "" &&
		c.MeetingDetails.StartTime != nil && *c.MeetingDetails.StartTime != "" {
		actions = appendUnique(actions, models.ActionCreateCalendarEvent)
	}

	// Replies: auto-draft only for urgent simple replies, suggest a draft
	// for urgent complex ones.
	if c.ActionRequired && c.NeedsReply {
		if urgentOrCritical(c.Urgency) && c.ReplyComplexity == models.ReplySimple {
			actions = appendUnique(actions, models.ActionAutoDraftReply)
		} else if urgentOrCritical(c.Urgency) && c.ReplyComplexity == models.ReplyComplex {
			actions = appendUnique(actions, models.ActionSuggestReplyDraft)
		}
	}

	// Medium urgency always gets a summary.
	if c.Urgency == models.UrgencyMedium {
		actions = appendUnique(actions, models.ActionSummaryOnly)
	}

	// Low urgency mail is summarized regardless of category, never
	// notified on its own.
	if c.Urgency == models.UrgencyLow {
		actions = appendUnique(actions, models.ActionSummaryOnly)
	}

	if len(actions) == 0 {
		actions = append(actions, models.ActionNoAction)
	}

	return actions
}
