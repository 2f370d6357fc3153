package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type ctxKey string

const queryInfoKey ctxKey = "query_info"

type queryInfo struct {
	sql   string
	start time.Time
}

// QueryLogger implements pgx.QueryTracer for logging database queries
type QueryLogger struct {
	logger zerolog.Logger
}

// NewQueryLogger creates a new query logger
func NewQueryLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{logger: logger}
}

// TraceQueryStart is called at the beginning of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryInfoKey, queryInfo{sql: data.SQL, start: time.Now()})
}

// TraceQueryEnd is called at the end of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	info, ok := ctx.Value(queryInfoKey).(queryInfo)
	if !ok {
		info = queryInfo{start: time.Now()}
	}
	duration := time.Since(info.start)

	if data.Err != nil {
		ql.logger.Error().
			Str("sql", info.sql).
			Err(data.Err).
			Msg("Query failed")
		return
	}

	if duration > 100*time.Millisecond {
		ql.logger.Warn().
			Str("sql", info.sql).
			Int64("duration_ms", duration.Milliseconds()).
			Str("command_tag", data.CommandTag.String()).
			Msg("Slow query detected")
		return
	}

	ql.logger.Debug().
		Str("sql", info.sql).
		Int64("duration_ms", duration.Milliseconds()).
		Str("command_tag", data.CommandTag.String()).
		Msg("Query executed")
}
