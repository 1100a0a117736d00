package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"driverquote/internal/middleware"

	"gorm.io/gorm"
)

// MigrationStore is the ledger of schema versions already applied to the
// contacts database.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, version int, name, sql string) error
	RemoveMigration(ctx context.Context, version int) error
}

type ledger struct {
	db *gorm.DB
}

// MigrationLog is one ledger row.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_migration_logs_applied_at ON migration_logs (applied_at);`

func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &ledger{db: db}
}

// GetAppliedMigrations lists ledger versions in ascending order. A database
// that has never been migrated has no ledger yet and reports none.
func (l *ledger) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	versions := []int{}
	err := l.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case errors.Is(err, gorm.ErrRecordNotFound), noLedgerTable(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
}

// postgres and sqlite word a missing table differently
func noLedgerTable(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "no such table") {
		return true
	}
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// ApplyMigration runs the up script and writes its ledger row atomically.
func (l *ledger) ApplyMigration(ctx context.Context, version int, name, sql string) error {
	label := fmt.Sprintf("%06d_%s", version, name)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("apply %s: %w", label, err)
		}
		if err := tx.Create(&MigrationLog{Version: version, Name: name}).Error; err != nil {
			return fmt.Errorf("record %s in ledger: %w", label, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "schema migrated", slog.String("migration", label))
	return nil
}

func (l *ledger) RemoveMigration(ctx context.Context, version int) error {
	if err := l.db.WithContext(ctx).Where("version = ?", version).Delete(&MigrationLog{}).Error; err != nil {
		return fmt.Errorf("drop ledger row %06d: %w", version, err)
	}
	return nil
}

// pendingMigrations keeps the registered migrations missing from applied, in
// version order.
func pendingMigrations(applied []int, registered []Migration) []Migration {
	var pending []Migration
	for _, m := range registered {
		if !slices.Contains(applied, m.Version) {
			pending = append(pending, m)
		}
	}
	return pending
}

// RunMigrations brings a postgres contacts database up to the latest
// embedded version. The ledger is created on first use.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(ledgerDDL).Error; err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, migrations); err != nil {
		return err
	}

	pending := pendingMigrations(applied, migrations)
	if len(pending) == 0 {
		middleware.Logger.DebugContext(ctx, "schema up to date", slog.Int("applied", len(applied)))
		return nil
	}
	for _, m := range pending {
		if err := store.ApplyMigration(ctx, m.Version, m.Name, m.UpScript); err != nil {
			return err
		}
	}
	return nil
}

// validateAppliedVersions refuses to start when the ledger holds versions
// this binary does not ship, e.g. after deploying an older build.
func validateAppliedVersions(applied []int, registered []Migration) error {
	var unknown []int
	for _, version := range applied {
		if !slices.ContainsFunc(registered, func(m Migration) bool { return m.Version == version }) {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	slices.Sort(unknown)
	labels := make([]string, len(unknown))
	for i, version := range unknown {
		labels[i] = fmt.Sprintf("%06d", version)
	}
	return fmt.Errorf("migration ledger has versions unknown to this build: %s", strings.Join(labels, ", "))
}

// RollbackMigration runs the down script of an applied version and drops its
// ledger row in the same transaction.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("no migration %06d in this build", version)
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %s is not applied", m)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m, err)
		}
		return NewMigrationStore(tx).RemoveMigration(ctx, version)
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "schema reverted", slog.String("migration", m.String()))
	return nil
}
