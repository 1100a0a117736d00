// Package seed provides helpers to create demo quote requests for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"math/rand"
	"strings"
	"time"

	"driverquote/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds contacts and persists them to the database.
type Factory struct {
	db      *gorm.DB
	maxDays int
	rng     *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB. maxDays
// bounds how far back generated createdAt values go.
func NewFactory(db *gorm.DB, maxDays int) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:      db,
		maxDays: maxDays,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildContact returns a contact that passes lead form validation. It is
// not persisted.
func (f *Factory) BuildContact(overrides ...func(*models.ContactRequest)) *models.ContactRequest {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()

	contact := &models.ContactRequest{
		Nom:           last,
		Prenom:        first,
		Email:         emailFor(first, last),
		Telephone:     frenchMobile(),
		TypeAssurance: models.InsuranceTypes[f.rng.Intn(len(models.InsuranceTypes))],
		Status:        models.ContactStatusPending,
	}

	// spread submissions over the last maxDays
	back := time.Duration(f.rng.Intn(f.maxDays*24*60)) * time.Minute
	contact.CreatedAt = time.Now().UTC().Add(-back).Truncate(time.Second)

	for _, override := range overrides {
		override(contact)
	}
	return contact
}

// CreateContact builds and persists a contact.
func (f *Factory) CreateContact(overrides ...func(*models.ContactRequest)) (*models.ContactRequest, error) {
	contact := f.BuildContact(overrides...)
	if err := f.db.Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// CreateContactsBatch persists multiple contacts in a single DB call.
func (f *Factory) CreateContactsBatch(contacts []*models.ContactRequest) error {
	if len(contacts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(contacts, 100).Error
}

func emailFor(first, last string) string {
	local := strings.Join(strings.Fields(first+"."+last), "")
	return strings.ToLower(local + "@" + gofakeit.DomainName())
}

// frenchMobile returns a 06/07 mobile number without spaces.
func frenchMobile() string {
	return gofakeit.RandomString([]string{"06", "07"}) + gofakeit.Numerify("########")
}
