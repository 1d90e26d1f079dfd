package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func gmailEmail(gmailID, subject string) *models.Email {
	return &models.Email{
		GmailID:  sql.NullString{String: gmailID, Valid: true},
		Subject:  subject,
		Body:     "body",
		FromAddr: "from@example.com",
		ToAddr:   "to@example.com",
		Status:   models.StatusSent,
	}
}

func TestUpsertEmail_SkipsDuplicateGmailID(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	first := gmailEmail("g-1", "original")
	require.NoError(t, db.UpsertEmail(ctx, first))
	assert.NotZero(t, first.ID)

	dup := gmailEmail("g-1", "duplicate")
	err := db.UpsertEmail(ctx, dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// The stored record is untouched.
	got, err := db.GetEmailByGmailID(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Subject)
}

func TestGetEmailByID_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetEmailByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkProcessed(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	email := gmailEmail("g-2", "pending")
	require.NoError(t, db.UpsertEmail(ctx, email))

	unprocessed, err := db.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)

	now := time.Now().UTC()
	require.NoError(t, db.MarkProcessed(ctx, email.ID, `{"urgency":"low"}`, `["SUMMARY_ONLY"]`, now))

	unprocessed, err = db.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	got, err := db.GetEmailByID(ctx, email.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.True(t, got.ProcessedAt.Valid)
	assert.WithinDuration(t, now, got.ProcessedAt.Time, time.Second)
	require.True(t, got.Classification.Valid)
	assert.JSONEq(t, `{"urgency":"low"}`, got.Classification.String)
	assert.JSONEq(t, `["SUMMARY_ONLY"]`, got.Actions)

	processed, err := db.ListProcessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, processed, 1)
	assert.Equal(t, email.ID, processed[0].ID)
}

func TestMarkProcessed_NotFound(t *testing.T) {
	db := testDB(t)
	err := db.MarkProcessed(context.Background(), 999, `{}`, `[]`, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEmail_PartialFields(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	email := &models.Email{Subject: "before", Body: "body", Status: models.StatusDraft}
	require.NoError(t, db.CreateEmail(ctx, email))

	subject := "after"
	got, err := db.UpdateEmail(ctx, email.ID, EmailUpdate{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "after", got.Subject)
	assert.Equal(t, "body", got.Body)
	assert.Equal(t, models.StatusDraft, got.Status)
}

func TestDeleteEmail(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	email := &models.Email{Subject: "gone", Status: models.StatusDraft}
	require.NoError(t, db.CreateEmail(ctx, email))
	require.NoError(t, db.DeleteEmail(ctx, email.ID))

	assert.ErrorIs(t, db.DeleteEmail(ctx, email.ID), ErrNotFound)
}

func TestActionEvents(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	email := &models.Email{Subject: "s", Status: models.StatusSent}
	require.NoError(t, db.CreateEmail(ctx, email))

	for _, action := range []models.Action{models.ActionNotifyUser, models.ActionSummaryOnly} {
		require.NoError(t, db.CreateActionEvent(ctx, &models.ActionEvent{
			EmailID: email.ID,
			Action:  action,
			Payload: string(action),
		}))
	}

	events, err := db.ListActionEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Most recent first.
	assert.Equal(t, models.ActionSummaryOnly, events[0].Action)
	assert.Equal(t, models.ActionNotifyUser, events[1].Action)
}
