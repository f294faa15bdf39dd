// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"accessdesk/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
	// runID tags seeded subjects so repeated runs never collide
	runID string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:    db,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		runID: uuid.NewString()[:8],
	}
}

// BuildAccount constructs an unsaved pending account with a fake profile.
func (f *Factory) BuildAccount(overrides ...func(*models.Account)) *models.Account {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	email := fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), gofakeit.DomainName())
	fullName := first + " " + last

	account := &models.Account{
		SubjectID:     fmt.Sprintf("seed-%s-%s", f.runID, uuid.NewString()[:12]),
		Email:         &email,
		FullName:      &fullName,
		RequestedRole: models.RoleViewer,
		Status:        models.StatusPending,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rnd.Intn(90)
	hoursBack := f.rnd.Intn(24)
	account.CreatedAt = time.Now().UTC().Add(
		-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(account)
	}
	return account
}

// CreateAccount builds and persists an account.
func (f *Factory) CreateAccount(overrides ...func(*models.Account)) (*models.Account, error) {
	account := f.BuildAccount(overrides...)
	if err := f.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("seeding account: %w", err)
	}
	return account, nil
}

// CreateApprovedAccount persists an account already approved into role by approver.
func (f *Factory) CreateApprovedAccount(role models.Role, approver string, overrides ...func(*models.Account)) (*models.Account, error) {
	return f.CreateAccount(append([]func(*models.Account){func(a *models.Account) {
		now := time.Now().UTC()
		a.RequestedRole = role
		a.ApprovedRole = &role
		a.Status = models.StatusApproved
		a.ApprovedBy = &approver
		a.ApprovedAt = &now
	}}, overrides...)...)
}

// CreateMessage persists a message between two subjects with fake content.
func (f *Factory) CreateMessage(sender, recipient string, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		SenderSubjectID:    sender,
		RecipientSubjectID: recipient,
		Subject:            gofakeit.Sentence(4),
		Body:               gofakeit.Paragraph(1, 3, 8, "\n"),
	}
	for _, override := range overrides {
		override(message)
	}
	if err := f.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("seeding message: %w", err)
	}
	return message, nil
}
