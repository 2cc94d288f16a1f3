// Package streak tracks consecutive daily check-ins in a single aggregate
// row.
package streak

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"organizer/internal/store"
)

var (
	// ErrAlreadyCheckedIn signals that today's check-in already happened.
	// A rejection, not a failure: state is untouched.
	ErrAlreadyCheckedIn = errors.New("streak: already checked in today")

	errMissingDatabase = errors.New("database handle is required")
)

// Streak is the singleton aggregate row. Count is the length of the
// consecutive-day run ending at LastCheckInMs; History records every
// check-in instant.
type Streak struct {
	ID            uint    `gorm:"column:id;primaryKey" json:"id"`
	Count         int     `gorm:"column:count;not null;default:0" json:"count"`
	LastCheckInMs *int64  `gorm:"column:last_check_in_ms" json:"lastCheckIn"`
	History       []int64 `gorm:"column:history;serializer:json" json:"history"`
}

// TableName provides the explicit table binding for GORM.
func (Streak) TableName() string {
	return "streak"
}

// PrimaryKey returns the surrogate key, zero before insertion.
func (s Streak) PrimaryKey() uint {
	return s.ID
}

// ServiceConfig wires the streak engine.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns the check-in state machine.
type Service struct {
	table  *store.Table[Streak]
	clock  func() time.Time
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
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{table: NewTable(cfg.Database), clock: clock, logger: logger}, nil
}

// NewTable binds the streak table.
func NewTable(db *gorm.DB) *store.Table[Streak] {
	return store.NewTable[Streak](db, "streak")
}

// Current returns the streak row, creating the zero-state row on first
// access.
func (s *Service) Current(ctx context.Context) (*Streak, error) {
	existing, err := s.table.OrderBy("id").First(ctx)
	if err != nil {
		s.logger.Error("streak load failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fresh := Streak{Count: 0, LastCheckInMs: nil, History: []int64{}}
	if _, err := s.table.Add(ctx, &fresh); err != nil {
		s.logger.Error("streak init failed", zap.Error(err))
		return nil, err
	}
	return &fresh, nil
}

// CheckIn records today's check-in. A second check-in on the same local
// calendar day returns ErrAlreadyCheckedIn and changes nothing. A
// check-in the day after the last one extends the run; any longer gap, or
// no prior check-in, restarts the count at 1.
func (s *Service) CheckIn(ctx context.Context) (*Streak, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if current.LastCheckInMs != nil {
		last := time.UnixMilli(*current.LastCheckInMs)
		switch {
		case sameCalendarDay(last, now):
			return current, ErrAlreadyCheckedIn
		case sameCalendarDay(last, now.AddDate(0, 0, -1)):
			current.Count++
		default:
			current.Count = 1
		}
	} else {
		current.Count = 1
	}

	nowMs := now.UnixMilli()
	current.LastCheckInMs = &nowMs
	current.History = append(current.History, nowMs)
	if _, err := s.table.Put(ctx, current); err != nil {
		s.logger.Error("streak check-in failed", zap.Error(err))
		return nil, err
	}
	return current, nil
}

// HasCheckedInToday is derived from the stored last check-in, never
// stored itself.
func (s *Service) HasCheckedInToday(ctx context.Context) (bool, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	if current.LastCheckInMs == nil {
		return false, nil
	}
	return sameCalendarDay(time.UnixMilli(*current.LastCheckInMs), s.clock()), nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
