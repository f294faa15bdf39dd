package models

import "time"

// BootstrapApprover is the sentinel approver recorded when the first account
// requesting the admin role is auto-approved.
const BootstrapApprover = "bootstrap-first-admin"

// Account represents a principal known to the access-control system. The
// subject identifier comes from the external identity provider and is the
// key every other part of the system references accounts by.
type Account struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	SubjectID       string         `gorm:"size:255;uniqueIndex;not null" json:"subject_id"`
	Email           *string        `gorm:"size:255" json:"email"`
	FullName        *string        `gorm:"size:255" json:"full_name"`
	RequestedRole   Role           `gorm:"type:varchar(20);not null" json:"requested_role"`
	ApprovedRole    *Role          `gorm:"type:varchar(20)" json:"approved_role"`
	Status          AccountStatus  `gorm:"type:varchar(20);not null;default:'pending';index:idx_accounts_status" json:"status"`
	ApprovedBy      *string        `gorm:"size:255" json:"approved_by"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	RejectionReason *string        `gorm:"size:500" json:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// IsApproved reports whether the account holds a granted role.
func (a *Account) IsApproved() bool {
	return a.Status == StatusApproved
}

// IsApprovedAdmin reports whether the account is an approved administrator.
func (a *Account) IsApprovedAdmin() bool {
	return a.Status == StatusApproved && a.ApprovedRole != nil && *a.ApprovedRole == RoleAdmin
}

// Permissions resolves the account's effective permission set. Accounts that
// are not approved have no permissions regardless of any stored role.
func (a *Account) Permissions() []string {
	if !a.IsApproved() || a.ApprovedRole == nil {
		return []string{}
	}
	return PermissionsForRole(*a.ApprovedRole)
}
