package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/metrics"
)

// fullHistoryStart bounds a first-time backfill pull.
var fullHistoryStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// Pull fetches new daily bars for every ticker and appends them to the
// history store, one worker per ticker. A new ticker gets its table created
// and a full-history pull; an existing one is topped up from its most
// recent stored date. Raw pulls are archived before cleaning when an
// archiver is configured.
func (s *Service) Pull(ctx context.Context, tickers []string, asOf time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := s.pullTicker(ctx, ticker, asOf); err != nil {
				metrics.PullErrors.WithLabelValues(ticker).Inc()
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) pullTicker(ctx context.Context, ticker string, asOf time.Time) error {
	created, err := s.bars.EnsureTicker(ctx, ticker)
	if err != nil {
		return err
	}

	start := fullHistoryStart
	if !created {
		last, err := s.bars.MostRecentDate(ctx, ticker)
		switch {
		case err == nil:
			start = last.AddDate(0, 0, 1)
		case errors.Is(err, market.ErrEmptySeries):
			// Table exists but holds nothing; keep the full-history start.
		default:
			return err
		}
	}
	if start.After(asOf) {
		s.log.Debug().Str("ticker", ticker).Msg("history already current")
		return nil
	}

	raw, err := s.source.GetBars(ctx, ticker, start, asOf)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		s.log.Debug().Str("ticker", ticker).Msg("no new bars")
		return nil
	}

	if s.archiver != nil {
		if err := s.archiver.ArchivePull(ctx, ticker, time.Now(), raw); err != nil {
			return err
		}
	}

	cleaned := raw.SortAscending().Dedupe()
	if err := cleaned.Validate(); err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}

	if err := s.bars.Append(ctx, ticker, cleaned); err != nil {
		return err
	}

	metrics.BarsIngested.WithLabelValues(ticker).Add(float64(len(cleaned)))
	s.log.Info().
		Str("ticker", ticker).
		Int("bars", len(cleaned)).
		Bool("new_ticker", created).
		Msg("appended bars")

	// A brand-new ticker also needs its crossover state seeded.
	if created {
		return s.Backfill(ctx, ticker)
	}
	return nil
}
