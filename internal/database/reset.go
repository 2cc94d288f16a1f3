package database

import (
	"context"

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

// Reset clears every registered table in one transaction: either the full
// data reset lands or nothing changes. Only the explicit "erase all data"
// operation uses this.
func Reset(ctx context.Context, db *gorm.DB) error {
	targets := []any{
		&notes.Note{},
		&labels.Label{},
		&routines.Profile{},
		&records.Record{},
		&streak.Streak{},
		&quotes.Quote{},
		&images.Image{},
		&settings.Setting{},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range targets {
			err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
