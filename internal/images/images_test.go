package images

import (
	"bytes"
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

	dsn := fmt.Sprintf("file:images_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Image{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("failed to construct image store: %v", err)
	}
	return service
}

func TestSaveRejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), "  ", []byte("x"), VariantFull, "image/png")
	if !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestSaveOverwritesSameKeyAndVariant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "photo", []byte("old"), VariantFull, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Save(ctx, "photo", []byte("new"), VariantFull, "image/jpeg"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	image, err := store.Get(ctx, "photo", VariantFull)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !bytes.Equal(image.Blob, []byte("new")) || image.MimeType != "image/jpeg" {
		t.Fatalf("expected overwrite, got %+v", image)
	}

	count, err := store.table.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row after overwrite, got %d", count)
	}
}

func TestVariantsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "photo", []byte("full"), VariantFull, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Save(ctx, "photo", []byte("thumb"), VariantThumbnail, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Overwriting the full rendition must leave the thumbnail alone.
	if err := store.Save(ctx, "photo", []byte("full-2"), VariantFull, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	thumb, err := store.Get(ctx, "photo", VariantThumbnail)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !bytes.Equal(thumb.Blob, []byte("thumb")) {
		t.Fatalf("thumbnail clobbered by full overwrite: %+v", thumb)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	image, err := store.Get(context.Background(), "ghost", VariantFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image != nil {
		t.Fatalf("expected nil for missing key, got %+v", image)
	}
}

func TestDeleteRemovesAllVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "photo", []byte("full"), VariantFull, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Save(ctx, "photo", []byte("thumb"), VariantThumbnail, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Save(ctx, "other", []byte("x"), VariantFull, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	if err := store.Delete(ctx, "photo"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	for _, variant := range []Variant{VariantFull, VariantThumbnail} {
		if image, _ := store.Get(ctx, "photo", variant); image != nil {
			t.Fatalf("variant %q survived delete", variant)
		}
	}
	if image, _ := store.Get(ctx, "other", VariantFull); image == nil {
		t.Fatalf("unrelated key removed by delete")
	}
}

func TestDisplayHandleShapesURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "photo", []byte("x"), VariantThumbnail, "image/png"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	handle, err := store.DisplayHandle(ctx, "photo", VariantThumbnail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handle.URL != "/api/images/photo?variant=thumbnail" {
		t.Fatalf("unexpected handle url %q", handle.URL)
	}

	missing, err := store.DisplayHandle(ctx, "ghost", VariantFull)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil handle for missing image")
	}
}

func TestParseVariant(t *testing.T) {
	if variant, err := ParseVariant(""); err != nil || variant != VariantFull {
		t.Fatalf("blank variant must parse to full, got %q %v", variant, err)
	}
	if _, err := ParseVariant("medium"); err == nil {
		t.Fatalf("unknown variant must be rejected")
	}
}
