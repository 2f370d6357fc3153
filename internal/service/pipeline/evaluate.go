package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/metrics"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

// Run executes the full daily cycle for every ticker: pull new bars, fold
// the newest bar into the crossover state, then evaluate and notify. Tickers
// run in parallel; a failure on one ticker does not stop the others, and the
// first error is returned after all workers finish.
func (s *Service) Run(ctx context.Context, tickers []string, evalDate time.Time) error {
	if err := s.Pull(ctx, tickers, evalDate); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := s.Update(ctx, ticker); err != nil {
				return err
			}
			_, err := s.EvaluateTicker(ctx, ticker, evalDate)
			return err
		})
	}
	return g.Wait()
}

// Update folds the most recent bar into the persisted crossover state. It
// pulls just enough trailing history for the slowest indicator to be defined
// on the newest bar and its predecessor, annotates, and runs the detector on
// the final index. A tracked ticker with no seeded state is drift, not a
// case to silently repair; the backfill command exists for that.
func (s *Service) Update(ctx context.Context, ticker string) error {
	series, err := s.bars.GetDaysBack(ctx, ticker, historyDepth)
	if err != nil {
		return err
	}
	if len(series) < 2 {
		return fmt.Errorf("ticker %s: %w", ticker, market.ErrEmptySeries)
	}

	annotated := s.detector.Annotate(series)
	last := len(annotated) - 1

	key := s.detector.StateKey(ticker)
	raw, err := s.states.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}
	st, err := signal.DecodeState(raw)
	if err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}

	next := s.detector.CheckCrossUp(annotated, last, st)
	next = s.detector.CheckCrossDown(annotated, last, next)
	if next == st {
		return nil
	}

	encoded, err := signal.EncodeState(next)
	if err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}
	if err := s.states.Set(ctx, key, encoded); err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}

	s.log.Info().
		Str("ticker", ticker).
		Str("last_cross_up", next.LastCrossUp.Format(market.DateFormat)).
		Str("last_cross_down", next.LastCrossDown.Format(market.DateFormat)).
		Msg("registered crossover")
	return nil
}

// EvaluateTicker runs the state machine for one ticker on evalDate and
// notifies on actionable decisions. When the ticker has no bar for evalDate
// (holiday, halt) the machine sees a zero date and emits WAIT without
// touching state.
func (s *Service) EvaluateTicker(ctx context.Context, ticker string, evalDate time.Time) (signal.TradeEvent, error) {
	barDate := time.Time{}
	last, err := s.bars.MostRecentDate(ctx, ticker)
	if err == nil && last.Equal(evalDate) {
		barDate = evalDate
	} else if err != nil && !errors.Is(err, market.ErrEmptySeries) {
		return signal.TradeEvent{}, err
	}

	machine := crossover.NewMachine(ticker, s.detector.StateKey(ticker), s.states)
	event, err := machine.Evaluate(ctx, barDate)
	if err != nil {
		return signal.TradeEvent{}, err
	}

	metrics.SignalsEmitted.WithLabelValues(ticker, string(event.Signal)).Inc()
	s.log.Info().
		Str("ticker", ticker).
		Str("signal", string(event.Signal)).
		Str("date", event.DateString()).
		Msg("evaluated")

	if event.Signal == signal.StatusBuy || event.Signal == signal.StatusSell {
		if err := s.notifier.Notify(ctx, event); err != nil {
			// Notification failure must not roll back a persisted decision.
			s.log.Error().Err(err).Str("ticker", ticker).Msg("notify failed")
		}
	}
	return event, nil
}
