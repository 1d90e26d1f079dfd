package actions

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

type fakeEventStore struct {
	events  []*models.ActionEvent
	failOn  models.Action
	created int64
}

func (f *fakeEventStore) CreateActionEvent(ctx context.Context, event *models.ActionEvent) error {
	if event.Action == f.failOn {
		return errors.New("event store unavailable")
	}
	f.created++
	event.ID = f.created
	f.events = append(f.events, event)
	return nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeDrafter struct {
	drafts []string
	err    error
}

func (f *fakeDrafter) CreateDraft(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.drafts = append(f.drafts, body)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func testEmail() *models.Email {
	return &models.Email{
		ID:       42,
		Subject:  "Quarterly review",
		FromAddr: "boss@example.com",
	}
}

func TestExecute_RecordsOneEventPerAction(t *testing.T) {
	store := &fakeEventStore{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(store, notifier, nil, testLogger())

	c := models.DefaultClassification()
	c.SuggestedSummary = "review scheduled"
	d.Execute(context.Background(), testEmail(), c, []models.Action{
		models.ActionNotifyUser,
		models.ActionSummaryOnly,
	})

	require.Len(t, store.events, 2)
	assert.Equal(t, models.ActionNotifyUser, store.events[0].Action)
	assert.Equal(t, models.ActionSummaryOnly, store.events[1].Action)
	assert.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Quarterly review")
}

func TestExecute_NotificationEscapesHTML(t *testing.T) {
	store := &fakeEventStore{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(store, notifier, nil, testLogger())

	email := &models.Email{
		ID:       7,
		Subject:  "Budget <Q3> & beyond",
		FromAddr: "Boss <boss@example.com>",
	}
	c := models.DefaultClassification()
	c.SuggestedSummary = "approve a < b"
	d.Execute(context.Background(), email, c, []models.Action{models.ActionNotifyUser})

	require.Len(t, notifier.sent, 1)
	text := notifier.sent[0]
	assert.Contains(t, text, "Boss &lt;boss@example.com&gt;")
	assert.Contains(t, text, "Budget &lt;Q3&gt; &amp; beyond")
	assert.Contains(t, text, "approve a &lt; b")
	assert.NotContains(t, text, "<boss@example.com>")
	// The only markup left is the bold wrapper around the subject.
	assert.Contains(t, text, "<b>")
}

func TestExecute_HandlerFailureDoesNotBlockSiblings(t *testing.T) {
	store := &fakeEventStore{failOn: models.ActionNotifyUser}
	d := NewDispatcher(store, nil, nil, testLogger())

	d.Execute(context.Background(), testEmail(), models.DefaultClassification(), []models.Action{
		models.ActionNotifyUser,
		models.ActionSummaryOnly,
	})

	// NOTIFY_USER persistence failed but SUMMARY_ONLY still ran.
	require.Len(t, store.events, 1)
	assert.Equal(t, models.ActionSummaryOnly, store.events[0].Action)
}

func TestExecute_NotifierFailureStillRecordsEvent(t *testing.T) {
	store := &fakeEventStore{}
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	d := NewDispatcher(store, notifier, nil, testLogger())

	d.Execute(context.Background(), testEmail(), models.DefaultClassification(), []models.Action{
		models.ActionNotifyUser,
	})

	require.Len(t, store.events, 1)
	assert.Equal(t, models.ActionNotifyUser, store.events[0].Action)
}

func TestExecute_AutoDraftCreatesGmailDraft(t *testing.T) {
	store := &fakeEventStore{}
	drafter := &fakeDrafter{}
	d := NewDispatcher(store, nil, drafter, testLogger())

	c := models.DefaultClassification()
	c.SuggestedSummary = "needs approval by Friday"
	d.Execute(context.Background(), testEmail(), c, []models.Action{models.ActionAutoDraftReply})

	require.Len(t, drafter.drafts, 1)
	assert.Contains(t, drafter.drafts[0], "needs approval by Friday")
	require.Len(t, store.events, 1)
	assert.Equal(t, models.ActionAutoDraftReply, store.events[0].Action)
	assert.Contains(t, store.events[0].Payload, "needs approval by Friday")
}

func TestExecute_CalendarEventPayload(t *testing.T) {
	store := &fakeEventStore{}
	d := NewDispatcher(store, nil, nil, testLogger())

	date := "2024-05-01"
	start := "09:00"
	c := models.DefaultClassification()
	c.ContainsMeeting = true
	c.MeetingDetails.Date = &date
	c.MeetingDetails.StartTime = &start

	d.Execute(context.Background(), testEmail(), c, []models.Action{models.ActionCreateCalendarEvent})

	require.Len(t, store.events, 1)
	assert.Contains(t, store.events[0].Payload, `"date":"2024-05-01"`)
	assert.Contains(t, store.events[0].Payload, `"start_time":"09:00"`)
	assert.Contains(t, store.events[0].Payload, `"title":"Meeting"`)
}

func TestExecute_NoActionRecordsNothing(t *testing.T) {
	store := &fakeEventStore{}
	d := NewDispatcher(store, nil, nil, testLogger())

	d.Execute(context.Background(), testEmail(), models.DefaultClassification(), []models.Action{models.ActionNoAction})

	assert.Empty(t, store.events)
}
