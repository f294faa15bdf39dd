package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"accessdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	newMessage := func(sender, recipient, subject string, createdAt time.Time) *models.Message {
		m := &models.Message{
			SenderSubjectID:    sender,
			RecipientSubjectID: recipient,
			Subject:            subject,
			Body:               "body of " + subject,
		}
		m.CreatedAt = createdAt
		require.NoError(t, repo.Create(ctx, m))
		return m
	}

	now := time.Now().UTC()
	first := newMessage("alice", "bob", "first", now.Add(-3*time.Hour))
	second := newMessage("alice", "bob", "second", now.Add(-2*time.Hour))
	newMessage("bob", "alice", "reply", now.Add(-1*time.Hour))
	newMessage("carol", "bob", "other", now.Add(-30*time.Minute))

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("ListByRecipient_NewestFirst", func(t *testing.T) {
		inbox, err := repo.ListByRecipient(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, inbox, 3)
		assert.Equal(t, "other", inbox[0].Subject)
		assert.Equal(t, "second", inbox[1].Subject)
		assert.Equal(t, "first", inbox[2].Subject)
	})

	t.Run("ListBySender_NewestFirst", func(t *testing.T) {
		sent, err := repo.ListBySender(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, sent, 2)
		assert.Equal(t, "second", sent[0].Subject)
		assert.Equal(t, "first", sent[1].Subject)
	})

	t.Run("CountUnread", func(t *testing.T) {
		count, err := repo.CountUnread(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		readAt := time.Now().UTC().Add(-time.Hour)
		first.ReadAt = &readAt
		require.NoError(t, repo.Update(ctx, first))

		count, err = repo.CountUnread(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("MarkAllRead_SharedTimestamp", func(t *testing.T) {
		readAt := time.Now().UTC().Truncate(time.Second)
		updated, err := repo.MarkAllRead(ctx, "bob", readAt)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		count, err := repo.CountUnread(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// already-read rows keep their original timestamp
		kept, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, kept.ReadAt)
		assert.NotEqual(t, readAt, kept.ReadAt.UTC().Truncate(time.Second))

		refreshed, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed.ReadAt)
		assert.WithinDuration(t, readAt, *refreshed.ReadAt, time.Second)

		// idempotent: nothing left to transition
		updated, err = repo.MarkAllRead(ctx, "bob", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated)
	})

	t.Run("DeleteAllForSubject", func(t *testing.T) {
		// alice sent two and received one
		deleted, err := repo.DeleteAllForSubject(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)

		remaining, err := repo.ListByRecipient(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "carol", remaining[0].SenderSubjectID)
	})
}
