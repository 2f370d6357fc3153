package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// BarRepository implements market.BarRepository using PostgreSQL, one table
// per ticker under the market schema.
type BarRepository struct {
	pool *pgxpool.Pool
}

// NewBarRepository creates a new BarRepository
func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// tableName returns the quoted per-ticker table identifier. Tickers arrive
// from config or API input, so the identifier is always sanitized rather
// than interpolated raw.
func tableName(ticker string) string {
	return pgx.Identifier{"market", strings.ToLower(ticker)}.Sanitize()
}

// EnsureTicker creates the ticker's bar table if needed.
func (r *BarRepository) EnsureTicker(ctx context.Context, ticker string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'market' AND table_name = $1
		)
	`, strings.ToLower(ticker)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", market.ErrDatabaseQuery, err)
	}
	if exists {
		return false, nil
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			date       DATE PRIMARY KEY,
			open       DOUBLE PRECISION NOT NULL,
			high       DOUBLE PRECISION NOT NULL,
			low        DOUBLE PRECISION NOT NULL,
			close      DOUBLE PRECISION NOT NULL,
			adj_close  DOUBLE PRECISION NOT NULL,
			volume     BIGINT NOT NULL
		)
	`, tableName(ticker))

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return false, fmt.Errorf("%w: %v", market.ErrDatabaseInsert, err)
	}
	return true, nil
}

// Append inserts new bars for a ticker.
func (r *BarRepository) Append(ctx context.Context, ticker string, series market.Series) error {
	if len(series) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (date, open, high, low, close, adj_close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO NOTHING
	`, tableName(ticker))

	batch := &pgx.Batch{}
	for _, b := range series {
		batch.Queue(query, b.Date, b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range series {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseInsert, err)
		}
	}
	return nil
}

const barColumns = "date, open, high, low, close, adj_close, volume"

// GetDaysBack returns the most recent n bars, ascending.
func (r *BarRepository) GetDaysBack(ctx context.Context, ticker string, n int) (market.Series, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY date DESC LIMIT %d
	`, barColumns, tableName(ticker), n)

	series, err := r.querySeries(ctx, ticker, query)
	if err != nil {
		return nil, err
	}
	return reverse(series), nil
}

// GetSinceDate returns bars with date >= since, ascending.
func (r *BarRepository) GetSinceDate(ctx context.Context, ticker string, since time.Time) (market.Series, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE date >= $1 ORDER BY date ASC
	`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, since)
}

// GetUntilDate returns bars with date <= until, ascending.
func (r *BarRepository) GetUntilDate(ctx context.Context, ticker string, until time.Time) (market.Series, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE date <= $1 ORDER BY date ASC
	`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, until)
}

// GetBetweenDates returns bars within the inclusive date range, ascending.
func (r *BarRepository) GetBetweenDates(ctx context.Context, ticker string, start, end time.Time) (market.Series, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE date >= $1 AND date <= $2 ORDER BY date ASC
	`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query, start, end)
}

// GetAll returns the full history, ascending.
func (r *BarRepository) GetAll(ctx context.Context, ticker string) (market.Series, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY date ASC
	`, barColumns, tableName(ticker))
	return r.querySeries(ctx, ticker, query)
}

// MostRecentDate returns the newest stored date for a ticker.
func (r *BarRepository) MostRecentDate(ctx context.Context, ticker string) (time.Time, error) {
	query := fmt.Sprintf(`
		SELECT date FROM %s ORDER BY date DESC LIMIT 1
	`, tableName(ticker))

	var date time.Time
	err := r.pool.QueryRow(ctx, query).Scan(&date)
	if err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, fmt.Errorf("ticker %s: %w", ticker, market.ErrEmptySeries)
		}
		return time.Time{}, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	return date, nil
}

func (r *BarRepository) querySeries(ctx context.Context, ticker, query string, args ...any) (market.Series, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var series market.Series
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
		}
		series = append(series, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ticker %s: %w: %v", ticker, market.ErrDatabaseQuery, err)
	}
	return series, nil
}

func reverse(s market.Series) market.Series {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}
