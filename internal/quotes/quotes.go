// Package quotes manages the displayed quote and its rotation policies.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

var errMissingDatabase = errors.New("database handle is required")

// RotateMode selects how the displayed quote is refreshed from the
// library list.
type RotateMode string

const (
	// RotateNone disables rotation.
	RotateNone RotateMode = "none"
	// RotateShuffle picks a random library entry on demand.
	RotateShuffle RotateMode = "shuffle"
	// RotateDaily picks a random entry at most once per calendar day.
	RotateDaily RotateMode = "daily"
)

// ErrInvalidRotateMode indicates an unknown rotation mode value.
var ErrInvalidRotateMode = errors.New("quotes: invalid rotate mode")

// ParseRotateMode validates a raw rotation mode value. The empty string
// means no rotation.
func ParseRotateMode(raw string) (RotateMode, error) {
	switch RotateMode(strings.ToLower(strings.TrimSpace(raw))) {
	case RotateNone, RotateMode(""):
		return RotateNone, nil
	case RotateShuffle:
		return RotateShuffle, nil
	case RotateDaily:
		return RotateDaily, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRotateMode, raw)
	}
}

// Entry is one library quote.
type Entry struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// Quote is the persisted quote row: the displayed text plus presentation
// settings and the rotation library.
type Quote struct {
	ID             uint       `gorm:"column:id;primaryKey" json:"id"`
	Text           string     `gorm:"column:text;not null;default:''" json:"text"`
	Author         string     `gorm:"column:author;not null;default:''" json:"author,omitempty"`
	Alignment      string     `gorm:"column:alignment;size:20;not null;default:center" json:"alignment"`
	FontFamily     string     `gorm:"column:font_family;size:80;not null;default:''" json:"fontFamily"`
	FontSize       int        `gorm:"column:font_size;not null;default:0" json:"fontSize"`
	FontColor      string     `gorm:"column:font_color;size:40;not null;default:''" json:"fontColor"`
	BackgroundBlur bool       `gorm:"column:background_blur;not null;default:false" json:"backgroundBlur"`
	IsActive       bool       `gorm:"column:is_active;not null;default:false;index" json:"isActive"`
	RotateMode     RotateMode `gorm:"column:rotate_mode;size:20;not null;default:none" json:"rotateMode"`
	QuoteList      []Entry    `gorm:"column:quote_list;serializer:json" json:"quoteList"`
	LastRotatedMs  *int64     `gorm:"column:last_rotated_ms" json:"lastRotated,omitempty"`
}

// TableName provides the explicit table binding for GORM.
func (Quote) TableName() string {
	return "quotes"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (q Quote) PrimaryKey() uint {
	return q.ID
}

// ServiceConfig wires the quote rotation engine.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	// Pick returns a uniform index in [0, n). Defaults to math/rand.
	Pick   func(n int) int
	Logger *zap.Logger
}

// Service owns the active quote and its rotation.
type Service struct {
	table  *store.Table[Quote]
	clock  func() time.Time
	pick   func(n int) int
	logger *zap.Logger
}

// NewService validates the configuration and constructs the engine.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	pick := cfg.Pick
	if pick == nil {
		pick = rand.Intn
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: NewTable(cfg.Database), clock: clock, pick: pick, logger: logger}, nil
}

// NewTable binds the quotes table with its indexed columns.
func NewTable(db *gorm.DB) *store.Table[Quote] {
	return store.NewTable[Quote](db, "quotes", "is_active")
}

// Active returns the quote flagged active, the first row when none is
// flagged, or nil when no quote exists.
func (s *Service) Active(ctx context.Context) (*Quote, error) {
	active, err := s.table.Where("is_active", true).First(ctx)
	if err != nil {
		s.logger.Error("active quote load failed", zap.Error(err))
		return nil, err
	}
	if active != nil {
		return active, nil
	}
	return s.table.OrderBy("id").First(ctx)
}

// Save upserts the quote. When the saved row is flagged active the flag is
// cleared on every other row inside the same transaction, so at most one
// row is ever active.
func (s *Service) Save(ctx context.Context, quote Quote) (*Quote, error) {
	err := s.table.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&quote).Error; err != nil {
			return err
		}
		if quote.IsActive {
			return tx.Model(&Quote{}).
				Where("id <> ?", quote.ID).
				Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		s.logger.Error("quote save failed", zap.Error(err))
		return nil, err
	}
	return &quote, nil
}

// Rotate refreshes the displayed text from the library per the quote's
// rotation mode. An empty library, RotateNone, and a daily rotation that
// already ran today are all no-ops.
func (s *Service) Rotate(ctx context.Context) (*Quote, error) {
	quote, err := s.Active(ctx)
	if err != nil || quote == nil {
		return quote, err
	}
	if len(quote.QuoteList) == 0 {
		return quote, nil
	}

	now := s.clock()
	switch quote.RotateMode {
	case RotateShuffle:
		// always rotates
	case RotateDaily:
		if quote.LastRotatedMs != nil && sameCalendarDay(time.UnixMilli(*quote.LastRotatedMs), now) {
			return quote, nil
		}
	default:
		return quote, nil
	}

	picked := quote.QuoteList[s.pick(len(quote.QuoteList))]
	quote.Text = picked.Text
	quote.Author = picked.Author
	nowMs := now.UnixMilli()
	quote.LastRotatedMs = &nowMs
	if _, err := s.table.Put(ctx, quote); err != nil {
		s.logger.Error("quote rotate failed", zap.Error(err))
		return nil, err
	}
	return quote, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
