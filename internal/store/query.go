package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Query accumulates an equality match, an optional in-memory predicate and
// an optional ordering, then executes as All, First or Delete.
type Query[T Record] struct {
	table       *Table[T]
	whereColumn string
	whereValue  any
	orderColumn string
	reversed    bool
	predicate   func(T) bool
	err         error
}

// Filter narrows the result set with an in-memory predicate applied after
// the indexed match.
func (q *Query[T]) Filter(predicate func(T) bool) *Query[T] {
	q.predicate = predicate
	return q
}

// Reverse flips the iteration order to descending.
func (q *Query[T]) Reverse() *Query[T] {
	q.reversed = true
	return q
}

// All executes the query and returns every matching row.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	scope := q.table.db.WithContext(ctx).Model(new(T))
	if q.whereColumn != "" {
		scope = scope.Where(fmt.Sprintf("%s = ?", q.whereColumn), q.whereValue)
	}
	if q.orderColumn != "" {
		direction := "ASC"
		if q.reversed {
			direction = "DESC"
		}
		scope = scope.Order(fmt.Sprintf("%s %s", q.orderColumn, direction))
	}

	var items []T
	if err := scope.Find(&items).Error; err != nil {
		return nil, q.table.wrap("query", err)
	}
	if q.predicate == nil {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		if q.predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// First returns the first matching row, or nil when nothing matches.
func (q *Query[T]) First(ctx context.Context) (*T, error) {
	items, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Delete removes every matching row inside one transaction.
func (q *Query[T]) Delete(ctx context.Context) error {
	items, err := q.All(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	err = q.table.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := tx.Delete(new(T), item.PrimaryKey()).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return q.table.wrap("query_delete", err)
	}
	return nil
}
