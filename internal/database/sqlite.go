package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/images"
	"organizer/internal/labels"
	"organizer/internal/notes"
	"organizer/internal/quotes"
	"organizer/internal/records"
	"organizer/internal/routines"
	"organizer/internal/settings"
	"organizer/internal/streak"
)

// OpenSQLite establishes the SQLite connection and performs schema
// migrations. Table and index creation is idempotent, so reopening an
// existing database is safe. Callers open once per process and share the
// handle.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}

// Migrate creates every registered table and index and applies the
// one-shot data migrations. Safe to call repeatedly.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(
		&notes.Note{},
		&labels.Label{},
		&routines.Profile{},
		&records.Record{},
		&streak.Streak{},
		&quotes.Quote{},
		&images.Image{},
		&settings.Setting{},
		&migrationRecord{},
	); err != nil {
		return err
	}
	return applyMigrations(db, logger)
}
