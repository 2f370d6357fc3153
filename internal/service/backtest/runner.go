package backtest

import (
	"context"
	"fmt"

	backtestdomain "github.com/ryanlattanzi/algo-trading/internal/domain/backtest"
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

// Runner resolves a backtest request against the bar history store and runs
// the simulator. Annotation happens over the full pulled history before the
// series is trimmed to the requested window, so the moving averages at the
// start date are computed from real prior bars rather than left undefined.
type Runner struct {
	bars market.BarRepository
}

// NewRunner builds a runner over the given history store.
func NewRunner(bars market.BarRepository) *Runner {
	return &Runner{bars: bars}
}

// Run executes one backtest request.
func (r *Runner) Run(ctx context.Context, req backtestdomain.Request) (backtestdomain.Result, backtestdomain.TradeBook, error) {
	if err := req.Validate(); err != nil {
		return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s: invalid request: %w", req.Ticker, err)
	}

	detector, err := crossover.ByName(string(req.Strategy))
	if err != nil {
		return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s: %w", req.Ticker, err)
	}

	var series market.Series
	if req.EndDate.IsZero() {
		series, err = r.bars.GetAll(ctx, req.Ticker)
	} else {
		series, err = r.bars.GetUntilDate(ctx, req.Ticker, req.EndDate)
	}
	if err != nil {
		return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s: %w", req.Ticker, err)
	}
	if len(series) == 0 {
		return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s: %w", req.Ticker, market.ErrEmptySeries)
	}

	annotated := detector.Annotate(series)

	if !req.StartDate.IsZero() {
		trimmed := market.Series{}
		for i := range annotated {
			if !annotated[i].Date.Before(req.StartDate) {
				trimmed = annotated[i:]
				break
			}
		}
		annotated = trimmed
	}

	sim, err := NewSimulator(req.Ticker, detector, annotated)
	if err != nil {
		return backtestdomain.Result{}, nil, err
	}
	return sim.Run(ctx, req.StartingCapital)
}
