// Package records stores plain log entries: hard delete only, no
// lifecycle flags.
package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

var errMissingDatabase = errors.New("database handle is required")

// Record is one log entry.
type Record struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"id"`
	Title       string `gorm:"column:title;not null;default:''" json:"title"`
	Content     string `gorm:"column:content;not null;default:''" json:"content"`
	CreatedAtMs int64  `gorm:"column:created_at_ms;not null;index" json:"createdAt"`
	UpdatedAtMs int64  `gorm:"column:updated_at_ms;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Record) TableName() string {
	return "records"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (r Record) PrimaryKey() uint {
	return r.ID
}

// Filter narrows a listing by free text and an inclusive creation-date
// window. Zero bounds are open.
type Filter struct {
	Search string
	FromMs int64
	ToMs   int64
}

// ServiceConfig wires the records service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service provides record CRUD and filtered listing.
type Service struct {
	table  *store.Table[Record]
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: NewTable(cfg.Database), clock: clock, logger: logger}, nil
}

// NewTable binds the records table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Record] {
	return store.NewTable[Record](db, "records", "created_at_ms")
}

// List returns records newest first, filtered in memory.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	items, err := s.table.OrderBy("created_at_ms").Reverse().All(ctx)
	if err != nil {
		s.logger.Error("record listing failed", zap.Error(err))
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]Record, 0, len(items))
	for _, record := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(record.Title), query) &&
			!strings.Contains(strings.ToLower(record.Content), query) {
			continue
		}
		if filter.FromMs != 0 && record.CreatedAtMs < filter.FromMs {
			continue
		}
		if filter.ToMs != 0 && record.CreatedAtMs > filter.ToMs {
			continue
		}
		matched = append(matched, record)
	}
	return matched, nil
}

// All returns every record unfiltered, newest first.
func (s *Service) All(ctx context.Context) ([]Record, error) {
	return s.List(ctx, Filter{})
}

// Get returns one record, or nil when the id is unknown.
func (s *Service) Get(ctx context.Context, id uint) (*Record, error) {
	return s.table.Get(ctx, id)
}

// Add inserts a new record stamped with the current time.
func (s *Service) Add(ctx context.Context, title, content string) (*Record, error) {
	now := s.clock().UnixMilli()
	record := Record{Title: title, Content: content, CreatedAtMs: now, UpdatedAtMs: now}
	if _, err := s.table.Add(ctx, &record); err != nil {
		s.logger.Error("record insert failed", zap.Error(err))
		return nil, err
	}
	return &record, nil
}

// Update rewrites the record, keeping the stored creation timestamp. An
// unknown id is nothing to do.
func (s *Service) Update(ctx context.Context, record Record) error {
	existing, err := s.table.Get(ctx, record.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	record.CreatedAtMs = existing.CreatedAtMs
	record.UpdatedAtMs = s.clock().UnixMilli()
	if _, err := s.table.Put(ctx, &record); err != nil {
		s.logger.Error("record update failed", zap.Error(err), zap.Uint("record_id", record.ID))
		return err
	}
	return nil
}

// Delete hard-deletes the record. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.table.Delete(ctx, id)
}
