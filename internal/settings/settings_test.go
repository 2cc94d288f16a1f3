package settings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:settings_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Setting{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct settings store: %v", err)
	}
	return service
}

func TestGetReturnsFallbackWhenAbsent(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get(context.Background(), "missing", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "fallback" {
		t.Fatalf("expected fallback, got %q", value)
	}
}

func TestSetOverwritesPriorValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if err := store.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	value, err := store.Get(ctx, KeyTheme, "")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if value != "light" {
		t.Fatalf("expected overwrite, got %q", value)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one row per key, got %d", len(all))
	}
}

func TestSetRejectsBlankKey(t *testing.T) {
	store := newTestStore(t)

	if err := store.Set(context.Background(), "  ", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestAppearanceDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	theme, err := store.Theme(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if theme != DefaultTheme {
		t.Fatalf("expected default theme, got %q", theme)
	}

	accent, _ := store.AccentColor(ctx)
	if accent != DefaultAccent {
		t.Fatalf("expected default accent, got %q", accent)
	}
	font, _ := store.FontFamily(ctx)
	if font != DefaultFont {
		t.Fatalf("expected default font, got %q", font)
	}

	if err := store.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	theme, _ = store.Theme(ctx)
	if theme != "dark" {
		t.Fatalf("expected stored theme, got %q", theme)
	}
}
