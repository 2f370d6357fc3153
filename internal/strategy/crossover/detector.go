// Package crossover holds the stateful heart of the system: detectors that
// register fast/slow moving-average crossovers into a per-ticker state, and
// the state machine that turns that state into a trading decision.
package crossover

import (
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Detector registers crossovers for one strategy variant. CheckCrossUp and
// CheckCrossDown inspect bar i against bar i-1 of an ascending series and
// return an updated copy of the state; they never touch external storage and
// never panic on undefined averages (no crossover, no update).
type Detector interface {
	// Name identifies the variant ("sma_cross", "macd_cross").
	Name() string

	// Annotate appends the indicator columns this detector reads.
	Annotate(series market.Series) market.Series

	// FastSlow extracts the fast and slow series values the detector compares
	// on a bar. Either may be nil while the window is filling.
	FastSlow(bar market.Bar) (fast, slow *float64)

	// CheckCrossUp registers a bullish crossover at bar i, if one occurred.
	CheckCrossUp(series market.Series, i int, st signal.State) signal.State

	// CheckCrossDown registers a bearish crossover at bar i, if one occurred.
	CheckCrossDown(series market.Series, i int, st signal.State) signal.State

	// StateKey namespaces the key-value entry for a ticker.
	StateKey(ticker string) string
}
