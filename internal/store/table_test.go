package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID     uint   `gorm:"column:id;primaryKey"`
	Serial string `gorm:"column:serial;size:40;not null;uniqueIndex"`
	Kind   string `gorm:"column:kind;size:20;not null;index"`
	Rank   int    `gorm:"column:rank;not null;default:0"`
}

func (widget) TableName() string {
	return "widgets"
}

func (w widget) PrimaryKey() uint {
	return w.ID
}

func newTestTable(t *testing.T) *Table[widget] {
	t.Helper()

	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewTable[widget](db, "widgets", "kind", "rank")
}

func TestTableAddAssignsKey(t *testing.T) {
	table := newTestTable(t)

	id, err := table.Add(context.Background(), &widget{Serial: "w-1", Kind: "gear"})
	if err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected assigned key, got zero")
	}

	stored, err := table.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if stored == nil || stored.Serial != "w-1" {
		t.Fatalf("unexpected stored row: %+v", stored)
	}
}

func TestTableGetMissingReturnsNil(t *testing.T) {
	table := newTestTable(t)

	stored, err := table.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != nil {
		t.Fatalf("expected nil for missing row, got %+v", stored)
	}
}

func TestTablePutOverwritesExistingKey(t *testing.T) {
	table := newTestTable(t)

	id, err := table.Add(context.Background(), &widget{Serial: "w-1", Kind: "gear"})
	if err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	updated := widget{ID: id, Serial: "w-1", Kind: "lever", Rank: 3}
	if _, err := table.Put(context.Background(), &updated); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	stored, err := table.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if stored.Kind != "lever" || stored.Rank != 3 {
		t.Fatalf("expected overwrite, got %+v", stored)
	}

	count, err := table.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after overwrite, got %d", count)
	}
}

func TestTableDeleteMissingIsNoOp(t *testing.T) {
	table := newTestTable(t)

	if err := table.Delete(context.Background(), 99); err != nil {
		t.Fatalf("expected missing delete to succeed, got %v", err)
	}
}

func TestTableBulkAddRollsBackOnFailure(t *testing.T) {
	table := newTestTable(t)

	batch := []widget{
		{Serial: "w-1", Kind: "gear"},
		{Serial: "w-2", Kind: "gear"},
		{Serial: "w-1", Kind: "lever"}, // duplicate serial fails the insert
	}
	if err := table.BulkAdd(context.Background(), batch); err == nil {
		t.Fatalf("expected bulk add to fail on duplicate serial")
	}

	count, err := table.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave 0 rows, got %d", count)
	}
}

func TestTableBulkAddInsertsAll(t *testing.T) {
	table := newTestTable(t)

	batch := []widget{
		{Serial: "w-1", Kind: "gear"},
		{Serial: "w-2", Kind: "lever"},
	}
	if err := table.BulkAdd(context.Background(), batch); err != nil {
		t.Fatalf("unexpected bulk add error: %v", err)
	}

	count, err := table.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}

func TestTableClearRemovesEverything(t *testing.T) {
	table := newTestTable(t)

	for i := 0; i < 3; i++ {
		serial := fmt.Sprintf("w-%d", i)
		if _, err := table.Add(context.Background(), &widget{Serial: serial, Kind: "gear"}); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	if err := table.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	count, err := table.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d rows", count)
	}
}

func TestTableWhereRejectsUndeclaredColumn(t *testing.T) {
	table := newTestTable(t)

	_, err := table.Where("serial", "w-1").All(context.Background())
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
	if !IsFailure(err) {
		t.Fatalf("expected a store-layer failure, got %v", err)
	}
}

func TestTableWhereMatchesIndexedColumn(t *testing.T) {
	table := newTestTable(t)

	seed := []widget{
		{Serial: "w-1", Kind: "gear"},
		{Serial: "w-2", Kind: "lever"},
		{Serial: "w-3", Kind: "gear"},
	}
	if err := table.BulkAdd(context.Background(), seed); err != nil {
		t.Fatalf("unexpected bulk add error: %v", err)
	}

	matched, err := table.Where("kind", "gear").All(context.Background())
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 gears, got %d", len(matched))
	}
}

func TestTableOrderByReverse(t *testing.T) {
	table := newTestTable(t)

	seed := []widget{
		{Serial: "w-1", Kind: "gear", Rank: 2},
		{Serial: "w-2", Kind: "gear", Rank: 5},
		{Serial: "w-3", Kind: "gear", Rank: 1},
	}
	if err := table.BulkAdd(context.Background(), seed); err != nil {
		t.Fatalf("unexpected bulk add error: %v", err)
	}

	items, err := table.OrderBy("rank").Reverse().All(context.Background())
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	if len(items) != 3 || items[0].Rank != 5 || items[2].Rank != 1 {
		t.Fatalf("unexpected descending order: %+v", items)
	}
}

func TestQueryFilterAndFirst(t *testing.T) {
	table := newTestTable(t)

	seed := []widget{
		{Serial: "w-1", Kind: "gear", Rank: 1},
		{Serial: "w-2", Kind: "gear", Rank: 2},
	}
	if err := table.BulkAdd(context.Background(), seed); err != nil {
		t.Fatalf("unexpected bulk add error: %v", err)
	}

	first, err := table.Where("kind", "gear").
		Filter(func(w widget) bool { return w.Rank == 2 }).
		First(context.Background())
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	if first == nil || first.Serial != "w-2" {
		t.Fatalf("unexpected first match: %+v", first)
	}

	missing, err := table.Where("kind", "pulley").First(context.Background())
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for no match, got %+v", missing)
	}
}

func TestQueryDeleteRemovesMatches(t *testing.T) {
	table := newTestTable(t)

	seed := []widget{
		{Serial: "w-1", Kind: "gear"},
		{Serial: "w-2", Kind: "lever"},
		{Serial: "w-3", Kind: "gear"},
	}
	if err := table.BulkAdd(context.Background(), seed); err != nil {
		t.Fatalf("unexpected bulk add error: %v", err)
	}

	if err := table.Where("kind", "gear").Delete(context.Background()); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	remaining, err := table.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected all error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Kind != "lever" {
		t.Fatalf("expected only the lever to survive, got %+v", remaining)
	}
}
