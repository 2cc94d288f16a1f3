package streak

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T) (*Service, *time.Time) {
	t.Helper()

	dsn := fmt.Sprintf("file:streak_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Streak{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("failed to construct streak engine: %v", err)
	}
	return service, &now
}

func TestCurrentCreatesZeroStateLazily(t *testing.T) {
	service, _ := newTestEngine(t)

	current, err := service.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Count != 0 || current.LastCheckInMs != nil || len(current.History) != 0 {
		t.Fatalf("unexpected zero state: %+v", current)
	}
}

func TestFirstCheckInStartsRunAtOne(t *testing.T) {
	service, now := newTestEngine(t)

	current, err := service.CheckIn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Count != 1 {
		t.Fatalf("expected count 1, got %d", current.Count)
	}
	if current.LastCheckInMs == nil || *current.LastCheckInMs != now.UnixMilli() {
		t.Fatalf("last check-in not stamped: %+v", current.LastCheckInMs)
	}
	if len(current.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(current.History))
	}
}

func TestSameDayCheckInIsRejected(t *testing.T) {
	service, now := newTestEngine(t)
	ctx := context.Background()

	if _, err := service.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*now = now.Add(6 * time.Hour) // still the same calendar day
	current, err := service.CheckIn(ctx)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if current.Count != 1 || len(current.History) != 1 {
		t.Fatalf("rejected check-in must not mutate state: %+v", current)
	}
}

func TestConsecutiveDayExtendsRun(t *testing.T) {
	service, now := newTestEngine(t)
	ctx := context.Background()

	if _, err := service.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*now = now.AddDate(0, 0, 1)
	current, err := service.CheckIn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Count != 2 {
		t.Fatalf("expected count 2 after consecutive day, got %d", current.Count)
	}

	*now = now.AddDate(0, 0, 1)
	current, err = service.CheckIn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Count != 3 {
		t.Fatalf("expected count 3, got %d", current.Count)
	}
	if len(current.History) != 3 {
		t.Fatalf("expected full history, got %d entries", len(current.History))
	}
}

func TestGapRestartsRun(t *testing.T) {
	service, now := newTestEngine(t)
	ctx := context.Background()

	if _, err := service.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	*now = now.AddDate(0, 0, 1)
	if _, err := service.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*now = now.AddDate(0, 0, 3) // two missed days
	current, err := service.CheckIn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Count != 1 {
		t.Fatalf("expected restart at 1, got %d", current.Count)
	}
	if len(current.History) != 3 {
		t.Fatalf("history must keep every check-in, got %d", len(current.History))
	}
}

func TestHasCheckedInTodayIsDerived(t *testing.T) {
	service, now := newTestEngine(t)
	ctx := context.Background()

	checked, err := service.HasCheckedInToday(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checked {
		t.Fatalf("expected false before any check-in")
	}

	if _, err := service.CheckIn(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checked, _ = service.HasCheckedInToday(ctx)
	if !checked {
		t.Fatalf("expected true on check-in day")
	}

	*now = now.AddDate(0, 0, 1)
	checked, _ = service.HasCheckedInToday(ctx)
	if checked {
		t.Fatalf("expected false the next day")
	}
}
