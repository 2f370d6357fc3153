package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTickerNotFound means the bar store has no table for the ticker
	ErrTickerNotFound = errors.New("ticker not found in bar store")

	// ErrEmptySeries means an operation that needs at least one bar got none
	ErrEmptySeries = errors.New("empty price series")

	// ErrSchemaMismatch means a raw pull did not match the canonical columns
	ErrSchemaMismatch = errors.New("pull columns do not adhere to the schema")

	// ErrDatabaseQuery wraps bar store read failures
	ErrDatabaseQuery = errors.New("bar store query failed")

	// ErrDatabaseInsert wraps bar store write failures
	ErrDatabaseInsert = errors.New("bar store insert failed")
)

// OrderError reports an out-of-order or duplicate-date bar, identifying the
// offending index so pipelines can name the bad pull.
type OrderError struct {
	Index int
	Date  time.Time
	Prev  time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("series not strictly ascending at index %d: %s follows %s",
		e.Index, e.Date.Format(DateFormat), e.Prev.Format(DateFormat))
}
