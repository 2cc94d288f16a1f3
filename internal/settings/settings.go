// Package settings is a flat string key/value store for small scalar
// preferences. Writes are independent per key; nothing is transactional
// across keys.
package settings

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

// Well-known setting keys and their defaults.
const (
	KeyTheme  = "organizer_theme"
	KeyAccent = "organizer_accent"
	KeyFont   = "organizer_font"

	DefaultTheme  = "light"
	DefaultAccent = "amber"
	DefaultFont   = "Inter"
)

var (
	// ErrEmptyKey rejects a blank setting key.
	ErrEmptyKey = errors.New("settings: key is empty")

	errMissingDatabase = errors.New("database handle is required")
)

// Setting is one key/value row.
type Setting struct {
	ID    uint   `gorm:"column:id;primaryKey" json:"id"`
	Key   string `gorm:"column:key;size:120;not null;uniqueIndex" json:"key"`
	Value string `gorm:"column:value;not null;default:''" json:"value"`
}

// TableName provides the explicit table binding for GORM.
func (Setting) TableName() string {
	return "settings"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (s Setting) PrimaryKey() uint {
	return s.ID
}

// ServiceConfig wires the settings store.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service reads and writes flat settings.
type Service struct {
	table  *store.Table[Setting]
	logger *zap.Logger
}

// NewService validates the configuration and constructs the store.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: NewTable(cfg.Database), logger: logger}, nil
}

// NewTable binds the settings table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Setting] {
	return store.NewTable[Setting](db, "settings", "key")
}

// Get returns the stored value, or fallback when the key is absent.
func (s *Service) Get(ctx context.Context, key, fallback string) (string, error) {
	row, err := s.table.Where("key", key).First(ctx)
	if err != nil {
		s.logger.Error("setting read failed", zap.Error(err), zap.String("key", key))
		return "", err
	}
	if row == nil {
		return fallback, nil
	}
	return row.Value, nil
}

// Set writes the value under key, overwriting any prior value.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	row, err := s.table.Where("key", key).First(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		_, err = s.table.Add(ctx, &Setting{Key: key, Value: value})
	} else {
		row.Value = value
		_, err = s.table.Put(ctx, row)
	}
	if err != nil {
		s.logger.Error("setting write failed", zap.Error(err), zap.String("key", key))
	}
	return err
}

// All returns every stored setting.
func (s *Service) All(ctx context.Context) ([]Setting, error) {
	return s.table.All(ctx)
}

// Theme returns the stored theme, defaulting to light.
func (s *Service) Theme(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyTheme, DefaultTheme)
}

// AccentColor returns the stored accent color, defaulting to amber.
func (s *Service) AccentColor(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyAccent, DefaultAccent)
}

// FontFamily returns the stored font family, defaulting to Inter.
func (s *Service) FontFamily(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyFont, DefaultFont)
}
