// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"accessdesk/internal/models"

	"gorm.io/gorm"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// WithTx returns a repository bound to the given transaction handle.
	WithTx(tx *gorm.DB) AccountRepository
	GetBySubjectID(ctx context.Context, subjectID string) (*models.Account, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, account *models.Account) error
	CountApprovedAdmins(ctx context.Context) (int64, error)
	ListPending(ctx context.Context) ([]models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	ListApproved(ctx context.Context) ([]models.Account, error)
	ListBySubjectIDs(ctx context.Context, subjectIDs []string) ([]models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepository{db: tx}
}

// GetBySubjectID fetches an account or fails with NOT_FOUND.
func (r *accountRepository) GetBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", subjectID)
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

// FindBySubjectID fetches an account, returning (nil, nil) when absent.
func (r *accountRepository) FindBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Delete(account).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountApprovedAdmins recomputes the approved-admin count. Callers that gate
// safety decisions on it must run it inside the same transaction as the
// mutation.
func (r *accountRepository) CountApprovedAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("status = ? AND approved_role = ?", models.StatusApproved, models.RoleAdmin).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *accountRepository) ListPending(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

// ListApproved returns approved accounts ordered for peer selection: display
// name first, email as tiebreaker and fallback for name-less accounts.
func (r *accountRepository) ListApproved(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusApproved).
		Order("full_name ASC, email ASC").
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) ListBySubjectIDs(ctx context.Context, subjectIDs []string) ([]models.Account, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("subject_id IN ?", subjectIDs).
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}
