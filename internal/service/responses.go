package service

import (
	"time"

	"accessdesk/internal/models"
)

// ProfileResponse is the public profile projection returned to the caller
// after sync and after every admin decision. Permissions are resolved only
// for approved accounts.
type ProfileResponse struct {
	SubjectID       string               `json:"subject_id"`
	Email           *string              `json:"email"`
	FullName        *string              `json:"full_name"`
	Status          models.AccountStatus `json:"status"`
	RequestedRole   models.Role          `json:"requested_role"`
	ApprovedRole    *models.Role         `json:"approved_role"`
	Permissions     []string             `json:"permissions"`
	ApprovedBy      *string              `json:"approved_by"`
	ApprovedAt      *time.Time           `json:"approved_at"`
	RejectionReason *string              `json:"rejection_reason"`
}

// BuildProfile projects an account into its public profile.
func BuildProfile(account *models.Account) *ProfileResponse {
	return &ProfileResponse{
		SubjectID:       account.SubjectID,
		Email:           account.Email,
		FullName:        account.FullName,
		Status:          account.Status,
		RequestedRole:   account.RequestedRole,
		ApprovedRole:    account.ApprovedRole,
		Permissions:     account.Permissions(),
		ApprovedBy:      account.ApprovedBy,
		ApprovedAt:      account.ApprovedAt,
		RejectionReason: account.RejectionReason,
	}
}

// PendingAccountResponse is the triage projection for the pending queue.
type PendingAccountResponse struct {
	SubjectID     string      `json:"subject_id"`
	Email         *string     `json:"email"`
	FullName      *string     `json:"full_name"`
	RequestedRole models.Role `json:"requested_role"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AdminAccountResponse is the admin-view projection of an account. It carries
// timestamps but no resolved permissions.
type AdminAccountResponse struct {
	SubjectID     string               `json:"subject_id"`
	Email         *string              `json:"email"`
	FullName      *string              `json:"full_name"`
	RequestedRole models.Role          `json:"requested_role"`
	ApprovedRole  *models.Role         `json:"approved_role"`
	Status        models.AccountStatus `json:"status"`
	ApprovedBy    *string              `json:"approved_by"`
	ApprovedAt    *time.Time           `json:"approved_at"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DeleteAccountResponse reports the result of an account deletion.
type DeleteAccountResponse struct {
	SubjectID            string `json:"subject_id"`
	DeletedMessagesCount int64  `json:"deleted_messages_count"`
}

// PeerResponse identifies a messaging counterpart.
type PeerResponse struct {
	SubjectID string  `json:"subject_id"`
	Email     *string `json:"email"`
	FullName  *string `json:"full_name"`
}

// MessageResponse is the message projection enriched with sender/recipient
// display fields. Display fields stay nil when the counterpart account has
// been deleted.
type MessageResponse struct {
	ID                 uint       `json:"id"`
	SenderSubjectID    string     `json:"sender_subject_id"`
	SenderEmail        *string    `json:"sender_email"`
	SenderFullName     *string    `json:"sender_full_name"`
	RecipientSubjectID string     `json:"recipient_subject_id"`
	RecipientEmail     *string    `json:"recipient_email"`
	RecipientFullName  *string    `json:"recipient_full_name"`
	Subject            string     `json:"subject"`
	Body               string     `json:"body"`
	ReplyToMessageID   *uint      `json:"reply_to_message_id"`
	ReadAt             *time.Time `json:"read_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

func indexBySubjectID(accounts []models.Account) map[string]*models.Account {
	byID := make(map[string]*models.Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].SubjectID] = &accounts[i]
	}
	return byID
}

func buildMessage(message *models.Message, accountsByID map[string]*models.Account) *MessageResponse {
	resp := &MessageResponse{
		ID:                 message.ID,
		SenderSubjectID:    message.SenderSubjectID,
		RecipientSubjectID: message.RecipientSubjectID,
		Subject:            message.Subject,
		Body:               message.Body,
		ReplyToMessageID:   message.ReplyToMessageID,
		ReadAt:             message.ReadAt,
		CreatedAt:          message.CreatedAt,
	}
	if sender := accountsByID[message.SenderSubjectID]; sender != nil {
		resp.SenderEmail = sender.Email
		resp.SenderFullName = sender.FullName
	}
	if recipient := accountsByID[message.RecipientSubjectID]; recipient != nil {
		resp.RecipientEmail = recipient.Email
		resp.RecipientFullName = recipient.FullName
	}
	return resp
}
