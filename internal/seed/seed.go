package seed

import (
	"fmt"
	"log"
	"time"

	"accessdesk/internal/models"

	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	NumAccounts int
	NumMessages int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seedable data. Messages go first so account rows are
// never orphan referents mid-cleanup.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Account{}).Error; err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}
	log.Println("Cleared existing data")
	return nil
}

// Seed creates a realistic population: one bootstrap admin, a spread of
// approved accounts across roles, some pending and rejected requests, and
// message threads between approved accounts.
func (s *Seeder) Seed(opts Options) error {
	if opts.NumAccounts < 4 {
		opts.NumAccounts = 4
	}

	log.Printf("Seeding %d accounts and %d messages...", opts.NumAccounts, opts.NumMessages)

	admin, err := s.factory.CreateApprovedAccount(models.RoleAdmin, models.BootstrapApprover)
	if err != nil {
		return err
	}

	approved := []*models.Account{admin}
	roles := []models.Role{models.RoleViewer, models.RoleEditor, models.RoleAdmin, models.RoleOwner}

	for i := 1; i < opts.NumAccounts; i++ {
		switch {
		case i%5 == 3:
			// leave pending, requesting a random role
			role := roles[s.factory.rnd.Intn(len(roles))]
			if _, err := s.factory.CreateAccount(func(a *models.Account) {
				a.RequestedRole = role
			}); err != nil {
				return err
			}
		case i%7 == 4:
			reason := "Request could not be verified"
			now := time.Now().UTC()
			if _, err := s.factory.CreateAccount(func(a *models.Account) {
				a.Status = models.StatusRejected
				a.ApprovedBy = &admin.SubjectID
				a.ApprovedAt = &now
				a.RejectionReason = &reason
			}); err != nil {
				return err
			}
		default:
			role := roles[s.factory.rnd.Intn(len(roles))]
			account, err := s.factory.CreateApprovedAccount(role, admin.SubjectID)
			if err != nil {
				return err
			}
			approved = append(approved, account)
		}
	}

	if err := s.seedMessages(approved, opts.NumMessages); err != nil {
		return err
	}

	log.Printf("Seeding complete: %d approved accounts", len(approved))
	return nil
}

// seedMessages creates threads between random pairs of approved accounts,
// replying to roughly a third of them and leaving some unread.
func (s *Seeder) seedMessages(approved []*models.Account, count int) error {
	if len(approved) < 2 {
		return nil
	}

	for i := 0; i < count; i++ {
		sender := approved[s.factory.rnd.Intn(len(approved))]
		recipient := approved[s.factory.rnd.Intn(len(approved))]
		if recipient.SubjectID == sender.SubjectID {
			continue
		}

		read := s.factory.rnd.Intn(2) == 0
		message, err := s.factory.CreateMessage(sender.SubjectID, recipient.SubjectID, func(m *models.Message) {
			if read {
				now := time.Now().UTC()
				m.ReadAt = &now
			}
		})
		if err != nil {
			return err
		}

		if s.factory.rnd.Intn(3) == 0 {
			if _, err := s.factory.CreateMessage(recipient.SubjectID, sender.SubjectID, func(m *models.Message) {
				m.Subject = "Re: " + message.Subject
				m.ReplyToMessageID = &message.ID
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
