// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"
	"log"
	"strings"

	"driverquote/internal/cache"
	"driverquote/internal/config"
	"driverquote/internal/database"
	"driverquote/internal/models"
	"driverquote/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoContacts bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo contacts.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Connect DB
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoContacts {
		if err := ensureDemoContacts(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo contacts: %w", err)
		}
	}

	return db, r, nil
}

// ensureDemoContacts fills an empty contacts table with DEV_SEED_CONTACTS fake
// leads. Only ever runs in development.
func ensureDemoContacts(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || cfg.DevSeedContacts <= 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.ContactRequest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := seed.Seed(db, seed.Options{NumContacts: cfg.DevSeedContacts}); err != nil {
		return err
	}
	log.Printf("development demo contacts ensured (%d)", cfg.DevSeedContacts)
	return nil
}
