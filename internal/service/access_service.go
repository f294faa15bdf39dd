// Package service implements the account lifecycle and messaging engines.
package service

import (
	"context"
	"time"

	"accessdesk/internal/cache"
	"accessdesk/internal/middleware"
	"accessdesk/internal/models"
	"accessdesk/internal/repository"

	"gorm.io/gorm"
)

// AccessService owns the account lifecycle: sync, approval decisions, the
// first-admin bootstrap rule and the admin-safety invariants around deletion.
type AccessService struct {
	db       *gorm.DB
	accounts repository.AccountRepository
	messages repository.MessageRepository
}

// NewAccessService returns a new AccessService.
func NewAccessService(db *gorm.DB, accounts repository.AccountRepository, messages repository.MessageRepository) *AccessService {
	return &AccessService{
		db:       db,
		accounts: accounts,
		messages: messages,
	}
}

// SyncInput carries the identity-provider view of a principal.
type SyncInput struct {
	SubjectID     string
	Email         *string
	FullName      *string
	RequestedRole models.Role
}

// CreateAccountInput carries an administrative account creation request.
type CreateAccountInput struct {
	SubjectID    string
	Email        *string
	FullName     *string
	ApprovedRole models.Role
}

// Sync upserts an account keyed by its subject identifier.
//
// New accounts start pending. While pending, profile fields and the requested
// role follow the input; once approved or rejected only profile fields are
// refreshed. An account requesting admin is auto-approved when no approved
// admin exists yet, attributed to the bootstrap sentinel, so the system never
// needs a separate seeding step. Concurrent first syncs may both observe zero
// admins; the resulting extra admin is tolerated and contained by the
// last-admin delete protection.
func (s *AccessService) Sync(ctx context.Context, input SyncInput) (*ProfileResponse, error) {
	var account *models.Account

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		existing, err := accounts.FindBySubjectID(ctx, input.SubjectID)
		if err != nil {
			return err
		}

		adminCount, err := accounts.CountApprovedAdmins(ctx)
		if err != nil {
			return err
		}
		bootstrap := input.RequestedRole == models.RoleAdmin && adminCount == 0

		if existing == nil {
			account = &models.Account{
				SubjectID:     input.SubjectID,
				Email:         input.Email,
				FullName:      input.FullName,
				RequestedRole: input.RequestedRole,
				Status:        models.StatusPending,
			}
			if bootstrap {
				grantBootstrapAdmin(account)
			}
			return accounts.Create(ctx, account)
		}

		existing.Email = input.Email
		existing.FullName = input.FullName

		if existing.Status == models.StatusPending {
			existing.RequestedRole = input.RequestedRole
			if bootstrap {
				grantBootstrapAdmin(existing)
			}
		}

		account = existing
		return accounts.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAccount(ctx, account.SubjectID)
	if account.ApprovedBy != nil && *account.ApprovedBy == models.BootstrapApprover {
		middleware.LifecycleDecisions.WithLabelValues("sync", "bootstrap_approved").Inc()
	} else {
		middleware.LifecycleDecisions.WithLabelValues("sync", string(account.Status)).Inc()
	}

	return BuildProfile(account), nil
}

func grantBootstrapAdmin(account *models.Account) {
	now := time.Now().UTC()
	adminRole := models.RoleAdmin
	approver := models.BootstrapApprover
	account.Status = models.StatusApproved
	account.ApprovedRole = &adminRole
	account.ApprovedBy = &approver
	account.ApprovedAt = &now
}

// CreateAsAdmin creates a pre-approved account on behalf of an administrator.
func (s *AccessService) CreateAsAdmin(ctx context.Context, input CreateAccountInput, actor *models.Account) (*ProfileResponse, error) {
	var account *models.Account

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		existing, err := accounts.FindBySubjectID(ctx, input.SubjectID)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.NewConflictError("Account already exists")
		}

		now := time.Now().UTC()
		role := input.ApprovedRole
		account = &models.Account{
			SubjectID:     input.SubjectID,
			Email:         input.Email,
			FullName:      input.FullName,
			RequestedRole: input.ApprovedRole,
			ApprovedRole:  &role,
			Status:        models.StatusApproved,
			ApprovedBy:    &actor.SubjectID,
			ApprovedAt:    &now,
		}
		return accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAccount(ctx, account.SubjectID)
	middleware.LifecycleDecisions.WithLabelValues("create", "approved").Inc()
	return BuildProfile(account), nil
}

// Approve grants the account its requested role, or an explicit override role
// when one is given. Re-approval of a rejected account is allowed and clears
// the stored rejection reason.
func (s *AccessService) Approve(ctx context.Context, subjectID string, approvedRole *models.Role, actor *models.Account) (*ProfileResponse, error) {
	var account *models.Account

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		found, err := accounts.GetBySubjectID(ctx, subjectID)
		if err != nil {
			return err
		}

		role := found.RequestedRole
		if approvedRole != nil {
			role = *approvedRole
		}

		now := time.Now().UTC()
		found.Status = models.StatusApproved
		found.ApprovedRole = &role
		found.ApprovedBy = &actor.SubjectID
		found.ApprovedAt = &now
		found.RejectionReason = nil

		account = found
		return accounts.Update(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAccount(ctx, subjectID)
	middleware.LifecycleDecisions.WithLabelValues("approve", "approved").Inc()
	return BuildProfile(account), nil
}

// Reject declines the account's request, clearing any granted role. The
// approval timestamp doubles as the decision timestamp; there is no separate
// rejection time field.
func (s *AccessService) Reject(ctx context.Context, subjectID string, reason *string, actor *models.Account) (*ProfileResponse, error) {
	var account *models.Account

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		found, err := accounts.GetBySubjectID(ctx, subjectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		found.Status = models.StatusRejected
		found.ApprovedRole = nil
		found.ApprovedBy = &actor.SubjectID
		found.ApprovedAt = &now
		found.RejectionReason = reason

		account = found
		return accounts.Update(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAccount(ctx, subjectID)
	middleware.LifecycleDecisions.WithLabelValues("reject", "rejected").Inc()
	return BuildProfile(account), nil
}

// Delete removes an account and every message it sent or received, in that
// order. Self-deletion is forbidden, and deleting the last approved admin is
// refused so the system can never reach zero administrators through this
// path. The admin count is recomputed inside the same transaction to keep the
// check meaningful under concurrency.
func (s *AccessService) Delete(ctx context.Context, subjectID string, actor *models.Account) (*DeleteAccountResponse, error) {
	var deletedMessages int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		messages := s.messages.WithTx(tx)

		found, err := accounts.GetBySubjectID(ctx, subjectID)
		if err != nil {
			return err
		}

		if found.SubjectID == actor.SubjectID {
			return models.NewInvalidOperationError("Cannot delete your own account")
		}

		if found.IsApprovedAdmin() {
			adminCount, err := accounts.CountApprovedAdmins(ctx)
			if err != nil {
				return err
			}
			if adminCount <= 1 {
				return models.NewInvalidOperationError("Cannot delete the last approved admin")
			}
		}

		// Messages must go before the account so the store stays consistent
		// mid-transaction.
		deletedMessages, err = messages.DeleteAllForSubject(ctx, subjectID)
		if err != nil {
			return err
		}

		return accounts.Delete(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAccount(ctx, subjectID)
	middleware.LifecycleDecisions.WithLabelValues("delete", "deleted").Inc()

	return &DeleteAccountResponse{
		SubjectID:            subjectID,
		DeletedMessagesCount: deletedMessages,
	}, nil
}

// ListPending returns accounts awaiting a decision, oldest request first.
func (s *AccessService) ListPending(ctx context.Context) ([]PendingAccountResponse, error) {
	accounts, err := s.accounts.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PendingAccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, PendingAccountResponse{
			SubjectID:     account.SubjectID,
			Email:         account.Email,
			FullName:      account.FullName,
			RequestedRole: account.RequestedRole,
			CreatedAt:     account.CreatedAt,
		})
	}
	return out, nil
}

// ListAll returns every account, newest first.
func (s *AccessService) ListAll(ctx context.Context) ([]AdminAccountResponse, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AdminAccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, AdminAccountResponse{
			SubjectID:     account.SubjectID,
			Email:         account.Email,
			FullName:      account.FullName,
			RequestedRole: account.RequestedRole,
			ApprovedRole:  account.ApprovedRole,
			Status:        account.Status,
			ApprovedBy:    account.ApprovedBy,
			ApprovedAt:    account.ApprovedAt,
			CreatedAt:     account.CreatedAt,
			UpdatedAt:     account.UpdatedAt,
		})
	}
	return out, nil
}
