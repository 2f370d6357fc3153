package pipeline

import (
	"context"
	"fmt"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Backfill seeds the persisted crossover state for a ticker by replaying its
// full annotated history through the detector. The forward replay applies
// the same trend-filter and ordering-guard semantics as a live run, so the
// seeded cross dates are exactly what a live pipeline would have recorded.
// Existing state is overwritten; backfill is the one place default seeding
// is allowed.
func (s *Service) Backfill(ctx context.Context, ticker string) error {
	series, err := s.bars.GetAll(ctx, ticker)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("ticker %s: %w", ticker, market.ErrEmptySeries)
	}

	annotated := s.detector.Annotate(series)

	st := signal.DefaultState()
	for i := 1; i < len(annotated); i++ {
		st = s.detector.CheckCrossUp(annotated, i, st)
		st = s.detector.CheckCrossDown(annotated, i, st)
	}

	if st.Bullish() {
		st.LastStatus = signal.StatusBuy
	} else {
		st.LastStatus = signal.StatusSell
	}

	encoded, err := signal.EncodeState(st)
	if err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}
	if err := s.states.Set(ctx, s.detector.StateKey(ticker), encoded); err != nil {
		return fmt.Errorf("ticker %s: %w", ticker, err)
	}

	s.log.Info().
		Str("ticker", ticker).
		Str("last_cross_up", st.LastCrossUp.Format(market.DateFormat)).
		Str("last_cross_down", st.LastCrossDown.Format(market.DateFormat)).
		Str("last_status", string(st.LastStatus)).
		Msg("backfilled crossover state")

	return nil
}
