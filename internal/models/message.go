package models

import "time"

// Message is a single unit of correspondence between two approved accounts.
// Sender and recipient are weak references by subject identifier; cleanup on
// account deletion is the lifecycle engine's job, not a storage constraint.
type Message struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SenderSubjectID    string     `gorm:"size:255;not null;index:idx_messages_sender" json:"sender_subject_id"`
	RecipientSubjectID string     `gorm:"size:255;not null;index:idx_messages_recipient" json:"recipient_subject_id"`
	Subject            string     `gorm:"size:200;not null" json:"subject"`
	Body               string     `gorm:"type:text;not null" json:"body"`
	ReplyToMessageID   *uint      `json:"reply_to_message_id"`
	ReadAt             *time.Time `json:"read_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// IsParty reports whether the given subject is the sender or recipient.
func (m *Message) IsParty(subjectID string) bool {
	return m.SenderSubjectID == subjectID || m.RecipientSubjectID == subjectID
}
