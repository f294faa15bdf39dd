package service

import (
	"context"
	"strings"
	"time"

	"accessdesk/internal/middleware"
	"accessdesk/internal/models"
	"accessdesk/internal/repository"

	"gorm.io/gorm"
)

// MessagingService owns the internal inbox: sending with reply-threading
// validation, one-way read-state transitions and inbox/sent/unread queries.
// Only approved accounts reach this service; the guards enforce that.
type MessagingService struct {
	db       *gorm.DB
	accounts repository.AccountRepository
	messages repository.MessageRepository
}

// NewMessagingService returns a new MessagingService.
func NewMessagingService(db *gorm.DB, accounts repository.AccountRepository, messages repository.MessageRepository) *MessagingService {
	return &MessagingService{
		db:       db,
		accounts: accounts,
		messages: messages,
	}
}

// SendMessageInput carries a message submission.
type SendMessageInput struct {
	RecipientSubjectID string
	Subject            string
	Body               string
	ReplyToMessageID   *uint
}

// ListPeers returns every approved account except the actor, ordered by
// display name then email for counterpart selection.
func (s *MessagingService) ListPeers(ctx context.Context, actor *models.Account) ([]PeerResponse, error) {
	accounts, err := s.accounts.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PeerResponse, 0, len(accounts))
	for _, account := range accounts {
		if account.SubjectID == actor.SubjectID {
			continue
		}
		out = append(out, PeerResponse{
			SubjectID: account.SubjectID,
			Email:     account.Email,
			FullName:  account.FullName,
		})
	}
	return out, nil
}

// Send validates and persists a message from the actor.
//
// The recipient must be an approved account other than the actor. A reply
// must reference an existing message the actor is a party to. Subject and
// body are trimmed and must be non-empty.
func (s *MessagingService) Send(ctx context.Context, input SendMessageInput, actor *models.Account) (*MessageResponse, error) {
	var (
		message   *models.Message
		recipient *models.Account
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		messages := s.messages.WithTx(tx)

		found, err := accounts.FindBySubjectID(ctx, input.RecipientSubjectID)
		if err != nil {
			return err
		}
		if found == nil || !found.IsApproved() {
			return models.NewNotFoundError("Recipient", input.RecipientSubjectID)
		}
		recipient = found

		if recipient.SubjectID == actor.SubjectID {
			return models.NewInvalidOperationError("Cannot send message to yourself")
		}

		if input.ReplyToMessageID != nil {
			referenced, err := messages.GetByID(ctx, *input.ReplyToMessageID)
			if err != nil {
				return err
			}
			if !referenced.IsParty(actor.SubjectID) {
				return models.NewForbiddenError("Cannot reply to a message outside your conversation")
			}
		}

		subject := strings.TrimSpace(input.Subject)
		body := strings.TrimSpace(input.Body)
		if subject == "" || body == "" {
			return models.NewInvalidOperationError("Subject and body are required")
		}

		message = &models.Message{
			SenderSubjectID:    actor.SubjectID,
			RecipientSubjectID: recipient.SubjectID,
			Subject:            subject,
			Body:               body,
			ReplyToMessageID:   input.ReplyToMessageID,
		}
		return messages.Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	middleware.MessagesSent.Inc()

	byID := map[string]*models.Account{
		actor.SubjectID:     actor,
		recipient.SubjectID: recipient,
	}
	return buildMessage(message, byID), nil
}

// ListInbox returns the actor's received messages, newest first.
func (s *MessagingService) ListInbox(ctx context.Context, actor *models.Account) ([]MessageResponse, error) {
	messages, err := s.messages.ListByRecipient(ctx, actor.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, messages, actor)
}

// ListSent returns the actor's sent messages, newest first.
func (s *MessagingService) ListSent(ctx context.Context, actor *models.Account) ([]MessageResponse, error) {
	messages, err := s.messages.ListBySender(ctx, actor.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, messages, actor)
}

// enrich resolves counterpart display fields for a message list. Counterparts
// that no longer exist simply render without display fields.
func (s *MessagingService) enrich(ctx context.Context, messages []models.Message, actor *models.Account) ([]MessageResponse, error) {
	seen := map[string]bool{actor.SubjectID: true}
	subjectIDs := []string{actor.SubjectID}
	for _, message := range messages {
		for _, id := range []string{message.SenderSubjectID, message.RecipientSubjectID} {
			if !seen[id] {
				seen[id] = true
				subjectIDs = append(subjectIDs, id)
			}
		}
	}

	accounts, err := s.accounts.ListBySubjectIDs(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}
	byID := indexBySubjectID(accounts)

	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, *buildMessage(&messages[i], byID))
	}
	return out, nil
}

// MarkRead records that the actor has read a message. The transition is
// one-way and idempotent: a message already read keeps its original read
// timestamp and no mutation occurs.
func (s *MessagingService) MarkRead(ctx context.Context, messageID uint, actor *models.Account) (*MessageResponse, error) {
	var message *models.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := s.messages.WithTx(tx)

		found, err := messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if found.RecipientSubjectID != actor.SubjectID {
			return models.NewForbiddenError("Cannot update this message")
		}

		if found.ReadAt == nil {
			now := time.Now().UTC()
			found.ReadAt = &now
			if err := messages.Update(ctx, found); err != nil {
				return err
			}
		}

		message = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListBySubjectIDs(ctx, []string{message.SenderSubjectID, message.RecipientSubjectID})
	if err != nil {
		return nil, err
	}
	return buildMessage(message, indexBySubjectID(accounts)), nil
}

// UnreadCount returns how many of the actor's received messages are unread.
func (s *MessagingService) UnreadCount(ctx context.Context, actor *models.Account) (int64, error) {
	return s.messages.CountUnread(ctx, actor.SubjectID)
}

// MarkAllRead transitions every unread message addressed to the actor in one
// set-based mutation sharing a single timestamp. Returns the number of
// messages transitioned; already-read messages are untouched.
func (s *MessagingService) MarkAllRead(ctx context.Context, actor *models.Account) (int64, error) {
	return s.messages.MarkAllRead(ctx, actor.SubjectID, time.Now().UTC())
}
