// Package sqlite provides a file-backed bar history store for local runs and
// backtests that do not warrant a PostgreSQL instance.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// Compile-time interface check.
var _ market.BarRepository = (*BarRepository)(nil)

// BarRepository implements market.BarRepository backed by a SQLite database,
// one table per ticker. Dates are stored as YYYY-MM-DD text.
type BarRepository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dbPath.
func Open(dbPath string) (*BarRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	return &BarRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *BarRepository) Close() error {
	return r.db.Close()
}

func tableName(ticker string) string {
	return `"bars_` + strings.ToLower(strings.ReplaceAll(ticker, `"`, "")) + `"`
}

// EnsureTicker creates the ticker's bar table if needed.
func (r *BarRepository) EnsureTicker(ctx context.Context, ticker string) (bool, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
		"bars_"+strings.ToLower(ticker),
	).Scan(&name)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			date       TEXT PRIMARY KEY,
			open       REAL NOT NULL,
			high       REAL NOT NULL,
			low        REAL NOT NULL,
			close      REAL NOT NULL,
			adj_close  REAL NOT NULL,
			volume     INTEGER NOT NULL
		)
	`, tableName(ticker))

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return false, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseInsert, err)
	}
	return true, nil
}

// Append inserts new bars for a ticker.
func (r *BarRepository) Append(ctx context.Context, ticker string, series market.Series) error {
	if len(series) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseInsert, err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT OR IGNORE INTO %s (date, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tableName(ticker))

	for _, b := range series {
		if _, err := tx.ExecContext(ctx, query,
			b.Date.Format(market.DateFormat), b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume,
		); err != nil {
			return fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseInsert, err)
		}
	}
	return tx.Commit()
}

const barColumns = "date, open, high, low, close, adj_close, volume"

// GetDaysBack returns the most recent n bars, ascending.
func (r *BarRepository) GetDaysBack(ctx context.Context, ticker string, n int) (market.Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY date DESC LIMIT %d`, barColumns, tableName(ticker), n)
	series, err := r.querySeries(ctx, ticker, query)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}

// GetSinceDate returns bars with date >= since, ascending.
func (r *BarRepository) GetSinceDate(ctx context.Context, ticker string, since time.Time) (market.Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE date >= ? ORDER BY date ASC`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, since.Format(market.DateFormat))
}

// GetUntilDate returns bars with date <= until, ascending.
func (r *BarRepository) GetUntilDate(ctx context.Context, ticker string, until time.Time) (market.Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE date <= ? ORDER BY date ASC`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, until.Format(market.DateFormat))
}

// GetBetweenDates returns bars within the inclusive date range, ascending.
func (r *BarRepository) GetBetweenDates(ctx context.Context, ticker string, start, end time.Time) (market.Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE date >= ? AND date <= ? ORDER BY date ASC`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, start.Format(market.DateFormat), end.Format(market.DateFormat))
}

// GetAll returns the full history, ascending.
func (r *BarRepository) GetAll(ctx context.Context, ticker string) (market.Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY date ASC`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query)
}

// MostRecentDate returns the newest stored date for a ticker.
func (r *BarRepository) MostRecentDate(ctx context.Context, ticker string) (time.Time, error) {
	query := fmt.Sprintf(`SELECT date FROM %s ORDER BY date DESC LIMIT 1`, tableName(ticker))

	var raw string
	err := r.db.QueryRowContext(ctx, query).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("ticker %s: %w", ticker, market.ErrEmptySeries)
		}
		return time.Time{}, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	return time.Parse(market.DateFormat, raw)
}

func (r *BarRepository) querySeries(ctx context.Context, ticker, query string, args ...any) (market.Series, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var series market.Series
	for rows.Next() {
		var b market.Bar
		var rawDate string
		if err := rows.Scan(&rawDate, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
		}
		b.Date, err = time.Parse(market.DateFormat, rawDate)
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w: bad date %q", ticker, market.ErrDatabaseQuery, rawDate)
		}
		series = append(series, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	return series, nil
}
