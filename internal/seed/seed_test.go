package seed

import (
	"testing"

	"driverquote/internal/database"
	"driverquote/internal/models"
	"driverquote/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestComputeCounts_Default(t *testing.T) {
	pending, contacted, converted := computeCounts(10, defaultDistribution)
	assert.Equal(t, 10, pending+contacted+converted)
	assert.Equal(t, 6, pending)
	assert.Equal(t, 3, contacted)
	assert.Equal(t, 1, converted)

	pending, contacted, converted = computeCounts(7, defaultDistribution)
	assert.Equal(t, 7, pending+contacted+converted)
	assert.Equal(t, 5, pending)
}

func TestBuildContact_PassesValidation(t *testing.T) {
	f := NewFactory(nil, 30)

	for i := 0; i < 50; i++ {
		c := f.BuildContact()
		_, errs := validation.ValidateContact(map[string]any{
			"nom":           c.Nom,
			"prenom":        c.Prenom,
			"email":         c.Email,
			"telephone":     c.Telephone,
			"typeAssurance": string(c.TypeAssurance),
		})
		require.Nil(t, errs, "generated contact %+v", c)
		assert.Equal(t, models.ContactStatusPending, c.Status)
		assert.False(t, c.CreatedAt.IsZero())
	}
}

func TestBuildContact_Overrides(t *testing.T) {
	f := NewFactory(nil, 0)
	c := f.BuildContact(func(c *models.ContactRequest) {
		c.TypeAssurance = models.InsuranceTypeTaxi
	})
	assert.Equal(t, models.InsuranceTypeTaxi, c.TypeAssurance)
}

func TestSeed(t *testing.T) {
	db := openDB(t)

	require.NoError(t, Seed(db, Options{NumContacts: 20}))
	require.NoError(t, Seed(db, Options{NumContacts: 10, ShouldClean: true}))

	var total int64
	require.NoError(t, db.Model(&models.ContactRequest{}).Count(&total).Error)
	assert.Equal(t, int64(10), total)

	var converted int64
	require.NoError(t, db.Model(&models.ContactRequest{}).Where("status = ?", models.ContactStatusConverted).Count(&converted).Error)
	assert.Equal(t, int64(1), converted)
}
