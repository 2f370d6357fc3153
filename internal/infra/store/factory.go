// Package store selects concrete storage backends by closed enum, keeping
// backend choice a construction-time decision.
package store

import (
	"context"
	"fmt"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/infra/database/postgres"
	"github.com/ryanlattanzi/algo-trading/internal/infra/database/sqlite"
	"github.com/ryanlattanzi/algo-trading/internal/infra/keyvalue"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/config"
)

// BarBackend enumerates bar history backends.
type BarBackend string

const (
	BarPostgres BarBackend = "postgres"
	BarSQLite   BarBackend = "sqlite"
)

// StateBackend enumerates signal state backends.
type StateBackend string

const (
	StatePostgres StateBackend = "postgres"
	StateMemory   StateBackend = "memory"
)

// Stores bundles the constructed repositories and anything that needs
// closing at shutdown.
type Stores struct {
	Bars   market.BarRepository
	States signal.KeyValueRepository

	pool   *postgres.Pool
	sqlite *sqlite.BarRepository
}

// New constructs the repositories named by the store config. The postgres
// pool is only dialed when at least one backend needs it.
func New(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}

	needPostgres := BarBackend(cfg.Store.BarBackend) == BarPostgres ||
		StateBackend(cfg.Store.StateBackend) == StatePostgres
	if needPostgres {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	switch BarBackend(cfg.Store.BarBackend) {
	case BarPostgres:
		s.Bars = postgres.NewBarRepository(s.pool.Pool)
	case BarSQLite:
		repo, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.sqlite = repo
		s.Bars = repo
	default:
		s.Close()
		return nil, fmt.Errorf("unknown bar backend %q", cfg.Store.BarBackend)
	}

	switch StateBackend(cfg.Store.StateBackend) {
	case StatePostgres:
		repo := postgres.NewStateRepository(s.pool.Pool)
		if err := repo.EnsureTable(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.States = repo
	case StateMemory:
		s.States = keyvalue.NewMemory(nil)
	default:
		s.Close()
		return nil, fmt.Errorf("unknown state backend %q", cfg.Store.StateBackend)
	}

	return s, nil
}

// DB exposes the postgres pool for health probes, or nil when no backend
// uses postgres.
func (s *Stores) DB() *postgres.Pool {
	return s.pool
}

// Close releases backend resources.
func (s *Stores) Close() {
	if s.sqlite != nil {
		s.sqlite.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
