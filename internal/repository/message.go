package repository

import (
	"context"
	"errors"
	"time"

	"accessdesk/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	// WithTx returns a repository bound to the given transaction handle.
	WithTx(tx *gorm.DB) MessageRepository
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, message *models.Message) error
	ListByRecipient(ctx context.Context, subjectID string) ([]models.Message, error)
	ListBySender(ctx context.Context, subjectID string) ([]models.Message, error)
	CountUnread(ctx context.Context, subjectID string) (int64, error)
	MarkAllRead(ctx context.Context, subjectID string, readAt time.Time) (int64, error)
	DeleteAllForSubject(ctx context.Context, subjectID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &messageRepository{db: tx}
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Save(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) ListByRecipient(ctx context.Context, subjectID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("recipient_subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) ListBySender(ctx context.Context, subjectID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("sender_subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, subjectID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_subject_id = ? AND read_at IS NULL", subjectID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkAllRead flips every unread message for the recipient in one set-based
// UPDATE so all rows share a single read timestamp. Returns the number of
// rows transitioned.
func (r *messageRepository) MarkAllRead(ctx context.Context, subjectID string, readAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_subject_id = ? AND read_at IS NULL", subjectID).
		Updates(map[string]interface{}{
			"read_at":    readAt,
			"updated_at": readAt,
		})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteAllForSubject removes every message the subject sent or received.
// Used by the account deletion cascade; must run before the account row goes.
func (r *messageRepository) DeleteAllForSubject(ctx context.Context, subjectID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sender_subject_id = ? OR recipient_subject_id = ?", subjectID, subjectID).
		Delete(&models.Message{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
