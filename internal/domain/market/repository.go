package market

import (
	"context"
	"time"
)

// BarRepository is the relational history store for daily bars, one logical
// table per ticker. All read methods return series sorted ascending by date.
type BarRepository interface {
	// EnsureTicker creates the backing table for a ticker if it does not exist,
	// reporting whether it was newly created.
	EnsureTicker(ctx context.Context, ticker string) (created bool, err error)

	// Append inserts new bars for a ticker. Bars must be ascending and must
	// not repeat dates already stored.
	Append(ctx context.Context, ticker string, series Series) error

	// GetDaysBack returns the most recent n bars, ascending.
	GetDaysBack(ctx context.Context, ticker string, n int) (Series, error)

	// GetSinceDate returns bars with date >= since, ascending.
	GetSinceDate(ctx context.Context, ticker string, since time.Time) (Series, error)

	// GetUntilDate returns bars with date <= until, ascending.
	GetUntilDate(ctx context.Context, ticker string, until time.Time) (Series, error)

	// GetBetweenDates returns bars with start <= date <= end, ascending.
	GetBetweenDates(ctx context.Context, ticker string, start, end time.Time) (Series, error)

	// GetAll returns the full history, ascending.
	GetAll(ctx context.Context, ticker string) (Series, error)

	// MostRecentDate returns the newest stored date for a ticker.
	MostRecentDate(ctx context.Context, ticker string) (time.Time, error)
}

// PriceSource fetches raw daily bars from a market-data provider. Returned
// series are normalized to the canonical columns, deduplicated by date and
// sorted ascending before the source hands them over.
type PriceSource interface {
	GetBars(ctx context.Context, ticker string, start, end time.Time) (Series, error)
}

// Archiver persists raw pulls for audit before they are cleaned and loaded.
type Archiver interface {
	ArchivePull(ctx context.Context, ticker string, pulledAt time.Time, series Series) error
}
