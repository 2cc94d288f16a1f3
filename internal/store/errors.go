package store

import (
	"errors"
	"fmt"
)

// ErrUnknownIndex reports an equality query against a column that was not
// declared indexed when the table was constructed.
var ErrUnknownIndex = errors.New("store: column is not indexed")

// Error is the store-failure condition every table operation can surface:
// quota exhaustion, transaction aborts and serialization failures all
// arrive here wrapped with the table and operation that hit them.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Table, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsFailure reports whether err originated in the store layer.
func IsFailure(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr)
}
