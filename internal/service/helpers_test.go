package service

import (
	"testing"
	"time"

	"accessdesk/internal/models"
	"accessdesk/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Message{}))
	return db
}

func newServices(t *testing.T) (*gorm.DB, *AccessService, *MessagingService) {
	t.Helper()
	db := setupTestDB(t)
	accounts := repository.NewAccountRepository(db)
	messages := repository.NewMessageRepository(db)
	return db, NewAccessService(db, accounts, messages), NewMessagingService(db, accounts, messages)
}

func strPtr(s string) *string { return &s }

func rolePtr(r models.Role) *models.Role { return &r }

// createApproved persists an account already approved into role.
func createApproved(t *testing.T, db *gorm.DB, subjectID string, role models.Role, fullName string) *models.Account {
	t.Helper()
	now := time.Now().UTC()
	approver := "some-admin"
	email := subjectID + "@example.com"
	account := &models.Account{
		SubjectID:     subjectID,
		Email:         &email,
		FullName:      &fullName,
		RequestedRole: role,
		ApprovedRole:  &role,
		Status:        models.StatusApproved,
		ApprovedBy:    &approver,
		ApprovedAt:    &now,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// createPending persists an account still awaiting a decision.
func createPending(t *testing.T, db *gorm.DB, subjectID string, requested models.Role) *models.Account {
	t.Helper()
	account := &models.Account{
		SubjectID:     subjectID,
		RequestedRole: requested,
		Status:        models.StatusPending,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
