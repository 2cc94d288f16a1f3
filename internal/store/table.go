package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Record is implemented by every row type managed by a Table. The surrogate
// key is zero until the row has been inserted.
type Record interface {
	PrimaryKey() uint
}

// Table is a typed object table over the shared SQLite handle. Equality
// queries are only permitted on columns declared indexed at construction
// time, mirroring the secondary-index surface of the storage engine.
type Table[T Record] struct {
	db      *gorm.DB
	name    string
	indexed map[string]struct{}
}

// NewTable binds a table to the database handle and declares its indexed
// columns.
func NewTable[T Record](db *gorm.DB, name string, indexedColumns ...string) *Table[T] {
	indexed := make(map[string]struct{}, len(indexedColumns))
	for _, column := range indexedColumns {
		indexed[column] = struct{}{}
	}
	return &Table[T]{db: db, name: name, indexed: indexed}
}

// Name returns the table name the instance was registered under.
func (t *Table[T]) Name() string {
	return t.name
}

// DB exposes the underlying handle for cross-table transactions.
func (t *Table[T]) DB() *gorm.DB {
	return t.db
}

// Add inserts the item and returns the assigned surrogate key.
func (t *Table[T]) Add(ctx context.Context, item *T) (uint, error) {
	if err := t.db.WithContext(ctx).Create(item).Error; err != nil {
		return 0, t.wrap("add", err)
	}
	return (*item).PrimaryKey(), nil
}

// Put upserts by primary key: rows with a zero key are inserted, rows with
// a non-zero key overwrite any existing row under that key.
func (t *Table[T]) Put(ctx context.Context, item *T) (uint, error) {
	if err := t.db.WithContext(ctx).Save(item).Error; err != nil {
		return 0, t.wrap("put", err)
	}
	return (*item).PrimaryKey(), nil
}

// Get returns the row under id, or nil when absent.
func (t *Table[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	err := t.db.WithContext(ctx).Take(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, t.wrap("get", err)
	}
	return &item, nil
}

// Delete removes the row under id. A missing id is not an error.
func (t *Table[T]) Delete(ctx context.Context, id uint) error {
	if err := t.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return t.wrap("delete", err)
	}
	return nil
}

// All returns every row in the table.
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	if err := t.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, t.wrap("all", err)
	}
	return items, nil
}

// Count returns the number of rows in the table.
func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := t.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, t.wrap("count", err)
	}
	return count, nil
}

// BulkAdd inserts every item inside one transaction. A single failed insert
// rolls back the whole batch.
func (t *Table[T]) BulkAdd(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return t.wrap("bulk_add", err)
	}
	return nil
}

// Clear removes every row in the table.
func (t *Table[T]) Clear(ctx context.Context) error {
	err := t.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(new(T)).Error
	if err != nil {
		return t.wrap("clear", err)
	}
	return nil
}

// Where starts an equality query against an indexed column.
func (t *Table[T]) Where(column string, value any) *Query[T] {
	query := &Query[T]{table: t, whereColumn: column, whereValue: value}
	if _, ok := t.indexed[column]; !ok {
		query.err = t.wrap("where", fmt.Errorf("%w: %s.%s", ErrUnknownIndex, t.name, column))
	}
	return query
}

// OrderBy starts an ordered iteration over the whole table. Ordering always
// runs natively in the engine; SQL has no un-indexed sort penalty worth a
// second code path.
func (t *Table[T]) OrderBy(column string) *Query[T] {
	return &Query[T]{table: t, orderColumn: column}
}

func (t *Table[T]) wrap(op string, err error) error {
	return &Error{Op: op, Table: t.name, Err: err}
}
