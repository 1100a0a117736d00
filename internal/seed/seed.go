package seed

import (
	"fmt"
	"log"

	"driverquote/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumContacts int
	MaxDays     int
	ShouldClean bool
}

// StatusDistribution is the share of seeded contacts per status, in percent.
type StatusDistribution struct {
	Pending   int
	Contacted int
	Converted int
}

var defaultDistribution = StatusDistribution{Pending: 60, Contacted: 30, Converted: 10}

// computeCounts splits total by d. Rounding leftovers go to pending.
func computeCounts(total int, d StatusDistribution) (pending, contacted, converted int) {
	contacted = total * d.Contacted / 100
	converted = total * d.Converted / 100
	pending = total - contacted - converted
	return pending, contacted, converted
}

// Seed populates the database with demo quote requests.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d contacts...", opts.NumContacts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear contacts: %w", err)
		}
	}

	f := NewFactory(db, opts.MaxDays)
	pending, contacted, converted := computeCounts(opts.NumContacts, defaultDistribution)

	contacts := make([]*models.ContactRequest, 0, opts.NumContacts)
	for status, n := range map[models.ContactStatus]int{
		models.ContactStatusPending:   pending,
		models.ContactStatusContacted: contacted,
		models.ContactStatusConverted: converted,
	} {
		for i := 0; i < n; i++ {
			contacts = append(contacts, f.BuildContact(func(c *models.ContactRequest) {
				c.Status = status
			}))
		}
	}

	if err := f.CreateContactsBatch(contacts); err != nil {
		return fmt.Errorf("failed to create contacts: %w", err)
	}
	log.Printf("✓ %d contacts created (pending=%d contacted=%d converted=%d)",
		len(contacts), pending, contacted, converted)
	return nil
}

func clearData(db *gorm.DB) error {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ContactRequest{}).Error
}
