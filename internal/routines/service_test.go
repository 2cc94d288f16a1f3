package routines

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingReleaser struct {
	released []string
	fail     error
}

func (r *recordingReleaser) Release(_ context.Context, key string) error {
	if r.fail != nil {
		return r.fail
	}
	r.released = append(r.released, key)
	return nil
}

func newTestEngine(t *testing.T, now time.Time) (*Service, *recordingReleaser) {
	t.Helper()

	dsn := fmt.Sprintf("file:routines_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Profile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	releaser := &recordingReleaser{}
	service, err := NewService(ServiceConfig{
		Database: db,
		Images:   releaser,
		Clock:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("failed to construct routine engine: %v", err)
	}
	return service, releaser
}

func TestTodayProfileTypeByWeekday(t *testing.T) {
	cases := []struct {
		day  time.Time
		want ProfileType
	}{
		{time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), ProfileWeekday}, // Monday
		{time.Date(2026, 6, 5, 9, 0, 0, 0, time.UTC), ProfileWeekday}, // Friday
		{time.Date(2026, 6, 6, 9, 0, 0, 0, time.UTC), ProfileWeekend}, // Saturday
		{time.Date(2026, 6, 7, 9, 0, 0, 0, time.UTC), ProfileWeekend}, // Sunday
	}
	for _, tc := range cases {
		service, _ := newTestEngine(t, tc.day)
		if got := service.TodayProfileType(); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.day.Weekday(), tc.want, got)
		}
	}
}

func TestAddItemCreatesProfileLazily(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	profile, err := service.Get(ctx, ProfileWeekday)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if profile != nil {
		t.Fatalf("expected no profile before first item")
	}

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Time: "07:00", Title: "wake up"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	profile, err = service.Get(ctx, ProfileWeekday)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if profile == nil || len(profile.Items) != 1 {
		t.Fatalf("expected profile with one item, got %+v", profile)
	}
	if profile.Items[0].Order != 0 {
		t.Fatalf("first item must get order 0, got %d", profile.Items[0].Order)
	}
}

func TestAddItemAppendsAtEnd(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		item := Item{ID: id, Time: fmt.Sprintf("0%d:00", 7+i), Title: id}
		if err := service.AddItem(ctx, ProfileWeekday, item); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	profile, _ := service.Get(ctx, ProfileWeekday)
	for i, item := range profile.Items {
		if item.Order != i {
			t.Fatalf("item %q: expected order %d, got %d", item.ID, i, item.Order)
		}
	}
}

func TestUpdateItemPreservesOrder(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := service.AddItem(ctx, ProfileWeekday, Item{ID: id, Title: id}); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	update := Item{ID: "b", Title: "renamed", Order: 99}
	if err := service.UpdateItem(ctx, ProfileWeekday, update); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	profile, _ := service.Get(ctx, ProfileWeekday)
	if profile.Items[1].Title != "renamed" {
		t.Fatalf("update not applied: %+v", profile.Items)
	}
	if profile.Items[1].Order != 1 {
		t.Fatalf("caller-supplied order must be ignored, got %d", profile.Items[1].Order)
	}
}

func TestUpdateItemUnknownIDIsNoOp(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Title: "a"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.UpdateItem(ctx, ProfileWeekday, Item{ID: "ghost", Title: "x"}); err != nil {
		t.Fatalf("expected no-op for unknown item, got %v", err)
	}
}

func TestDeleteItemReleasesAttachedImage(t *testing.T) {
	service, releaser := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Title: "with image", ImageID: "img-1"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "b", Title: "plain"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	if err := service.DeleteItem(ctx, ProfileWeekday, "a"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	if len(releaser.released) != 1 || releaser.released[0] != "img-1" {
		t.Fatalf("expected image release for img-1, got %v", releaser.released)
	}

	profile, _ := service.Get(ctx, ProfileWeekday)
	if len(profile.Items) != 1 || profile.Items[0].ID != "b" {
		t.Fatalf("unexpected surviving items: %+v", profile.Items)
	}
}

func TestDeleteItemWithoutImageSkipsRelease(t *testing.T) {
	service, releaser := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Title: "plain"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.DeleteItem(ctx, ProfileWeekday, "a"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if len(releaser.released) != 0 {
		t.Fatalf("no release expected, got %v", releaser.released)
	}
}

func TestReorderSurvivesReload(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := service.AddItem(ctx, ProfileWeekday, Item{ID: id, Title: id}); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	profile, _ := service.Get(ctx, ProfileWeekday)
	reordered := []Item{profile.Items[2], profile.Items[0], profile.Items[1]}
	if err := service.Reorder(ctx, ProfileWeekday, Renumber(reordered)); err != nil {
		t.Fatalf("unexpected reorder error: %v", err)
	}

	reloaded, _ := service.Get(ctx, ProfileWeekday)
	got := []string{reloaded.Items[0].ID, reloaded.Items[1].ID, reloaded.Items[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order after reload: got %v want %v", got, want)
		}
	}
}

func TestToggleCompleteFlipsOnlyTheFlag(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Title: "task", Time: "07:00"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	if err := service.ToggleComplete(ctx, ProfileWeekday, "a"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	profile, _ := service.Get(ctx, ProfileWeekday)
	if !profile.Items[0].Completed {
		t.Fatalf("expected completed after first toggle")
	}
	if profile.Items[0].Title != "task" || profile.Items[0].Time != "07:00" {
		t.Fatalf("toggle changed other fields: %+v", profile.Items[0])
	}

	if err := service.ToggleComplete(ctx, ProfileWeekday, "a"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	profile, _ = service.Get(ctx, ProfileWeekday)
	if profile.Items[0].Completed {
		t.Fatalf("expected uncompleted after second toggle")
	}
}

func TestProfilesAreIndependent(t *testing.T) {
	service, _ := newTestEngine(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := service.AddItem(ctx, ProfileWeekday, Item{ID: "a", Title: "standup"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.AddItem(ctx, ProfileWeekend, Item{ID: "b", Title: "hike"}); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	weekday, _ := service.Get(ctx, ProfileWeekday)
	weekend, _ := service.Get(ctx, ProfileWeekend)
	if len(weekday.Items) != 1 || weekday.Items[0].ID != "a" {
		t.Fatalf("unexpected weekday items: %+v", weekday.Items)
	}
	if len(weekend.Items) != 1 || weekend.Items[0].ID != "b" {
		t.Fatalf("unexpected weekend items: %+v", weekend.Items)
	}
}
